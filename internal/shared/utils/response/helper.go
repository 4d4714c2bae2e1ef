package response

import "github.com/gin-gonic/gin"

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError responds with an error envelope carrying a machine-readable code.
func RespondError(c *gin.Context, httpCode int, errCode string, message string, errors interface{}) {
	c.JSON(httpCode, StandardApiResponse{
		Status:     "error",
		StatusCode: httpCode,
		Message:    message,
		Code:       errCode,
		Errors:     errors,
	})
}
