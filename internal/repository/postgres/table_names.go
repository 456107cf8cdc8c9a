package postgres

import "fmt"

// TableNames holds environment-prefixed table names
type TableNames struct {
	Accounts        string
	AdminSessions   string
	AIUsage         string
	ActivationCodes string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Accounts:        fmt.Sprintf("%saccounts", prefix),
		AdminSessions:   fmt.Sprintf("%sadmin_sessions", prefix),
		AIUsage:         fmt.Sprintf("%sai_usage", prefix),
		ActivationCodes: fmt.Sprintf("%sactivation_codes", prefix),
	}
}
