package nfctags

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusDisabled Status = "DISABLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusDisabled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsActive() bool {
	return s == StatusActive
}
