package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Log levels stored with each entry.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// LogEntry is one line of the activity history: either a served request or an audited
// user action, told apart by ActionType.
type LogEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
	Level      string             `bson:"level" json:"level"`
	Message    string             `bson:"message" json:"message"`
	RequestID  string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Method     string             `bson:"method,omitempty" json:"method,omitempty"`
	Path       string             `bson:"path,omitempty" json:"path,omitempty"`
	StatusCode int                `bson:"status_code,omitempty" json:"status_code,omitempty"`
	Duration   int64              `bson:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	IP         string             `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Error      string             `bson:"error,omitempty" json:"error,omitempty"`
	UserID     string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	UserEmail  string             `bson:"user_email,omitempty" json:"user_email,omitempty"`
	ActionType string             `bson:"action_type,omitempty" json:"action_type,omitempty"`
	Fields     map[string]any     `bson:"fields,omitempty" json:"fields,omitempty"`
}

// Stamp fills the id and timestamp when they are unset.
func (e *LogEntry) Stamp(now time.Time) {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now.UTC()
	}
	if e.Level == "" {
		e.Level = LevelInfo
	}
}

// IsAudit reports whether the entry records a user action.
func (e *LogEntry) IsAudit() bool { return e.ActionType != "" }

// Activity action types recorded in the history.
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionRegister       = "register"
	ActionSearch         = "search"
	ActionView           = "view"
	ActionCalculate      = "calculate"
	ActionExport         = "export"
	ActionCreateChemical = "create_chemical"
	ActionUpdateChemical = "update_chemical"
	ActionDeleteChemical = "delete_chemical"
	ActionSetLimit       = "set_limit"
	ActionRemoveLimit    = "remove_limit"
	ActionCreateReg      = "create_regulation"
	ActionUpdateReg      = "update_regulation"
	ActionDeleteReg      = "delete_regulation"
	ActionFeatureReg     = "feature_regulation"
)

// ActivityScope splits the history into administrator writes and user activity.
type ActivityScope string

const (
	ScopeAll   ActivityScope = ""
	ScopeAdmin ActivityScope = "admin"
	ScopeUser  ActivityScope = "user"
)

// Actions returns the action types that belong to the scope. ScopeAll returns nil.
func (s ActivityScope) Actions() []string {
	switch s {
	case ScopeAdmin:
		return []string{
			ActionCreateChemical, ActionUpdateChemical, ActionDeleteChemical,
			ActionSetLimit, ActionRemoveLimit,
			ActionCreateReg, ActionUpdateReg, ActionDeleteReg, ActionFeatureReg,
		}
	case ScopeUser:
		return []string{ActionSearch, ActionView, ActionCalculate, ActionExport, ActionLogin, ActionLogout, ActionRegister}
	}
	return nil
}

// Valid reports whether s is a known scope.
func (s ActivityScope) Valid() bool {
	return s == ScopeAll || s == ScopeAdmin || s == ScopeUser
}

// LogQueryOptions filters the history. Zero values match everything.
type LogQueryOptions struct {
	RequestID   string
	Level       string
	Method      string
	Path        string
	UserID      string
	ActionTypes []string
	// AuditOnly keeps entries that carry an action type.
	AuditOnly bool
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Skip      int
}
