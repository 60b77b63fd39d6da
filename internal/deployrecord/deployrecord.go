// Package deployrecord validates and constructs deployment records for
// the pipeline's audit trail.
package deployrecord

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Valid deployment statuses.
const (
	StatusSuccess    = "success"
	StatusFailure    = "failure"
	StatusRolledBack = "rolled-back"
)

// Record describes one deployment for the audit trail.
type Record struct {
	ID          string    `json:"id"`
	Environment string    `json:"environment"`
	Commit      string    `json:"commit"`
	Deployer    string    `json:"deployer"`
	Status      string    `json:"status"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ValidationError carries every reason a record was rejected, so a
// caller can surface them all at once rather than one per round trip.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid deployment record: %s", strings.Join(e.Reasons, "; "))
}

// New validates the supplied fields and constructs a Record. On
// validation failure it returns a *ValidationError listing every
// problem found.
func New(environment, commit, deployer, status string) (*Record, error) {
	var reasons []string

	environment = strings.TrimSpace(environment)
	if environment == "" {
		reasons = append(reasons, "environment is required")
	}

	commit = strings.TrimSpace(commit)
	switch {
	case commit == "":
		reasons = append(reasons, "commit is required")
	case !isHex(commit) || len(commit) < 7:
		reasons = append(reasons, fmt.Sprintf("commit %q is not a valid git hash", commit))
	}

	deployer = strings.TrimSpace(deployer)
	if deployer == "" {
		reasons = append(reasons, "deployer is required")
	}

	status = strings.TrimSpace(status)
	switch status {
	case StatusSuccess, StatusFailure, StatusRolledBack:
	case "":
		reasons = append(reasons, "status is required")
	default:
		reasons = append(reasons, fmt.Sprintf("status %q must be one of success, failure, rolled-back", status))
	}

	if len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons}
	}

	return &Record{
		ID:          uuid.New().String(),
		Environment: environment,
		Commit:      commit,
		Deployer:    deployer,
		Status:      status,
		RecordedAt:  time.Now().UTC(),
	}, nil
}

func isHex(s string) bool {
	for _, c := range s {
		isDigit := c >= '0' && c <= '9'
		isLower := c >= 'a' && c <= 'f'
		isUpper := c >= 'A' && c <= 'F'
		if !isDigit && !isLower && !isUpper {
			return false
		}
	}
	return true
}
