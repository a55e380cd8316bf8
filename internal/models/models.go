package models

import (
	"strings"
	"time"
)

// Account roles. The role stored on the user row is the sole authorization
// signal for administrative actions.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidRole reports whether s is a recognized account role.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleMember
}

// User represents a user account
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Role         string     `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	InvitedAt    *time.Time `json:"invited_at,omitempty" db:"invited_at"`
	JoinedAt     *time.Time `json:"joined_at,omitempty" db:"joined_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the name shown on comments and assignments:
// "First Last" when available, otherwise the email address.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Email
}

// AvatarInitials derives a two-letter avatar label from the display name.
// Names are sliced by rune, not byte, so multi-byte letters stay intact.
func (u *User) AvatarInitials() string {
	name := u.DisplayName()
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	parts := strings.Fields(name)
	if len(parts) >= 2 {
		first := []rune(parts[0])
		second := []rune(parts[1])
		return strings.ToUpper(string(first[0]) + string(second[0]))
	}
	runes := []rune(name)
	if len(runes) >= 2 {
		return strings.ToUpper(string(runes[:2]))
	}
	if len(runes) == 1 {
		return strings.ToUpper(name)
	}
	return "??"
}

// Project groups the questions extracted from one uploaded RFP document.
// Carries display metadata only; behavior lives on the questions.
type Project struct {
	ID               string     `json:"id" db:"id"`
	DisplayRfpID     *string    `json:"display_rfp_id,omitempty" db:"display_rfp_id"`
	OriginalFilename string     `json:"original_filename" db:"original_filename"`
	ClientName       *string    `json:"client_name,omitempty" db:"client_name"`
	Description      *string    `json:"description,omitempty" db:"description"`
	DueDate          *time.Time `json:"due_date,omitempty" db:"due_date"`
	Tags             []string   `json:"tags" db:"tags"`
	ValueRange       *string    `json:"value_range,omitempty" db:"value_range"`
	Status           string     `json:"status" db:"status"`
	JobID            *string    `json:"job_id,omitempty" db:"job_id"`
	UploadedAt       time.Time  `json:"uploaded_at" db:"uploaded_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ProjectLeadID    *string    `json:"project_lead_id,omitempty" db:"project_lead_id"`
}

// AnswerPlaceholder is shown when a question has neither a human-edited
// answer nor an AI-generated one.
const AnswerPlaceholder = "No answer generated yet."

// Question is one RFP item extracted from a document.
//
// AIGeneratedAnswer is written once at ingestion and never mutated.
// EditorID and ReviewerID are independent single-valued slots.
type Question struct {
	ID                 string     `json:"id" db:"id"`
	ProjectID          string     `json:"project_id" db:"project_id"`
	OriginalSheetName  *string    `json:"original_sheet_name,omitempty" db:"original_sheet_name"`
	OriginalRowNumber  *int       `json:"original_row_number,omitempty" db:"original_row_number"`
	SectionHeader      *string    `json:"section_header,omitempty" db:"section_header"`
	QuestionText       string     `json:"identified_question_text" db:"identified_question_text"`
	AIGeneratedAnswer  *string    `json:"ai_generated_answer,omitempty" db:"ai_generated_answer"`
	EditedAnswer       *string    `json:"edited_answer,omitempty" db:"edited_answer"`
	ConfidenceText     *string    `json:"confidence_text,omitempty" db:"confidence_text"`
	ConfidenceScore    *float64   `json:"confidence_score_calculated,omitempty" db:"confidence_score_calculated"`
	ReviewRequiredText *string    `json:"review_required_text,omitempty" db:"review_required_text"`
	SourcesText        *string    `json:"sources_text,omitempty" db:"sources_text"`
	Status             string     `json:"status" db:"status"`
	EditorID           *string    `json:"editor_id,omitempty" db:"editor_id"`
	ReviewerID         *string    `json:"reviewer_id,omitempty" db:"reviewer_id"`
	LastEditedAt       *time.Time `json:"last_edited_at,omitempty" db:"last_edited_at"`
	LastEditedBy       *string    `json:"last_edited_by,omitempty" db:"last_edited_by"`
	LastStatusChangeAt *time.Time `json:"last_status_change_at,omitempty" db:"last_status_change_at"`
}

// DisplayAnswer returns the answer collaborators see: the human-edited
// answer when non-empty, else the AI-generated one, else a placeholder.
func (q *Question) DisplayAnswer() string {
	if q.EditedAnswer != nil && strings.TrimSpace(*q.EditedAnswer) != "" {
		return *q.EditedAnswer
	}
	if q.AIGeneratedAnswer != nil && strings.TrimSpace(*q.AIGeneratedAnswer) != "" {
		return *q.AIGeneratedAnswer
	}
	return AnswerPlaceholder
}

// Comment is one remark on a question's thread. Immutable once created.
type Comment struct {
	ID                 string    `json:"id" db:"id"`
	QuestionID         string    `json:"question_id" db:"question_id"`
	UserID             *string   `json:"user_id,omitempty" db:"user_id"`
	UserDisplayName    string    `json:"user_display_name" db:"user_display_name"`
	UserAvatarInitials *string   `json:"user_avatar_initials,omitempty" db:"user_avatar_initials"`
	CommentText        string    `json:"comment_text" db:"comment_text"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// Session represents an issued token. Access and refresh tokens from the
// same login share a session_id.
type Session struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	SessionID      string    `json:"session_id" db:"session_id"`
	JTI            string    `json:"jti" db:"jti"`
	TokenType      string    `json:"token_type" db:"token_type"` // "access" or "refresh"
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	IPAddress      string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent      string    `json:"user_agent,omitempty" db:"user_agent"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        uint      `json:"id" db:"id"`
	UserID    *string   `json:"user_id,omitempty" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Resource  string    `json:"resource" db:"resource"`
	Details   string    `json:"details,omitempty" db:"details"`
	IPAddress string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent string    `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
