package domain

// ConversationStatus mirror of the job application lifecycle
type ConversationStatus string

const (
	// ConversationOpen accept new messages
	ConversationOpen ConversationStatus = "open"
	// ConversationClosed readable only, operators may still write
	ConversationClosed ConversationStatus = "closed"
)

// ClosingApplicationStatuses 應徵狀態變更為以下任一時對話關閉
var ClosingApplicationStatuses = []string{"closed", "withdrawn", "rejected", "hired"}

// Conversation 一個應徵 (job application) 對應一個對話
type Conversation struct {
	ID            string             `bson:"_id" json:"id"` // job application id
	JobPostID     string             `bson:"job_post_id" json:"job_post_id"`
	ApplicantID   string             `bson:"applicant_id" json:"applicant_id"`
	CounterpartID string             `bson:"counterpart_id" json:"counterpart_id"` // employer
	Status        ConversationStatus `bson:"status" json:"status"`
	CreatedAt     int64              `bson:"created_at" json:"created_at"` // unix ms
}

// HasParticipant check memberID is one of the two parties
func (c *Conversation) HasParticipant(memberID string) bool {
	return memberID != "" && (memberID == c.ApplicantID || memberID == c.CounterpartID)
}

// Counterparty return the other party, empty when memberID is not a participant
func (c *Conversation) Counterparty(memberID string) string {
	switch memberID {
	case c.ApplicantID:
		return c.CounterpartID
	case c.CounterpartID:
		return c.ApplicantID
	}
	return ""
}

// IsClosed status closed
func (c *Conversation) IsClosed() bool {
	return c.Status == ConversationClosed
}

// Application job application as seen by the directory
type Application struct {
	ID          string `json:"id"`
	JobPostID   string `json:"job_post_id"`
	ApplicantID string `json:"applicant_id"`
	EmployerID  string `json:"employer_id"`
	Status      string `json:"status"`
}

// JobPost operator lookup projection
type JobPost struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	EmployerID string `json:"employer_id"`
	CreatedAt  int64  `json:"created_at"`
}

// ApplicantSummary operator applicant listing row
type ApplicantSummary struct {
	ApplicationID string `json:"application_id"`
	ApplicantID   string `json:"applicant_id"`
	Username      string `json:"username"`
	Status        string `json:"status"`
}

// Participant display metadata from the member service
type Participant struct {
	MemberID string `json:"member_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
