package types

// Entity shapes shared by the remote and local persistence paths. The local
// cache persists these exact JSON shapes (camelCase), so field tags here ARE
// the local schema. Timestamps are RFC 3339 strings; dates are "2006-01-02".
// An absent remote timestamp reads back as "" rather than a null leaking
// into callers.

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	HomeworkStatusTodo = "todo"
	HomeworkStatusDone = "done"

	AttachmentTypeImage = "image"
)

// Record is what the generic repository engine needs from every entity.
type Record interface {
	RecordID() string
	RecordOwner() string
	RecordCreatedAt() string
}

// Attachment is dual-representation: URLOrData holds an inline encoded image
// until Path (the remote object key) exists, after which URLOrData carries a
// resolved signed URL. At steady state exactly one of the two modes holds.
type Attachment struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	URLOrData string `json:"urlOrData,omitempty"`
	Name      string `json:"name,omitempty"`
	Path      string `json:"path,omitempty"`
	Mime      string `json:"mime,omitempty"`
	Size      int64  `json:"size,omitempty"`
}

// Local returns whether the attachment only exists on this device.
func (a Attachment) Local() bool { return a.Path == "" }

type MessageMeta struct {
	Source string `json:"source,omitempty"`
}

type Project struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

func (p Project) RecordID() string        { return p.ID }
func (p Project) RecordOwner() string     { return p.UserID }
func (p Project) RecordCreatedAt() string { return p.CreatedAt }

type Thread struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (t Thread) RecordID() string        { return t.ID }
func (t Thread) RecordOwner() string     { return t.UserID }
func (t Thread) RecordCreatedAt() string { return t.CreatedAt }

type Message struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	ThreadID    string       `json:"threadId"`
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Tags        []string     `json:"tags,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Meta        *MessageMeta `json:"meta,omitempty"`
	CreatedAt   string       `json:"createdAt"`
}

func (m Message) RecordID() string        { return m.ID }
func (m Message) RecordOwner() string     { return m.UserID }
func (m Message) RecordCreatedAt() string { return m.CreatedAt }

// Homework.Detail may itself serialize a structured payload (description plus
// checklist items); this layer treats it as an opaque string.
type Homework struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	ProjectID   string       `json:"projectId"`
	Title       string       `json:"title"`
	Detail      string       `json:"detail,omitempty"`
	AssignedAt  string       `json:"assignedAt,omitempty"`
	DueAt       string       `json:"dueAt,omitempty"`
	Status      string       `json:"status"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

func (h Homework) RecordID() string        { return h.ID }
func (h Homework) RecordOwner() string     { return h.UserID }
func (h Homework) RecordCreatedAt() string { return h.CreatedAt }

type TestSet struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Date      string      `json:"date"`
	Name      string      `json:"name"`
	Grade     string      `json:"grade,omitempty"`
	Memo      string      `json:"memo,omitempty"`
	Scores    []TestScore `json:"scores,omitempty"`
	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt,omitempty"`
}

func (s TestSet) RecordID() string        { return s.ID }
func (s TestSet) RecordOwner() string     { return s.UserID }
func (s TestSet) RecordCreatedAt() string { return s.CreatedAt }

// TestScore is owned transitively through its TestSet; it has no userId of
// its own, so RecordOwner is empty and owner-filtered lookups never apply.
type TestScore struct {
	ID            string   `json:"id"`
	TestSetID     string   `json:"testSetId"`
	Subject       string   `json:"subject"`
	Score         float64  `json:"score"`
	Average       *float64 `json:"average,omitempty"`
	MaxScore      float64  `json:"maxScore"`
	Rank          *int     `json:"rank,omitempty"`
	Deviation     *float64 `json:"deviation,omitempty"`
	ProblemImages []string `json:"problemImages,omitempty"`
	AnswerImages  []string `json:"answerImages,omitempty"`
	CreatedAt     string   `json:"createdAt"`
}

func (s TestScore) RecordID() string        { return s.ID }
func (s TestScore) RecordOwner() string     { return "" }
func (s TestScore) RecordCreatedAt() string { return s.CreatedAt }

type LessonRecord struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	Duration  int    `json:"duration"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Content   string `json:"content"`
	Memo      string `json:"memo,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (r LessonRecord) RecordID() string        { return r.ID }
func (r LessonRecord) RecordOwner() string     { return r.UserID }
func (r LessonRecord) RecordCreatedAt() string { return r.CreatedAt }

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func (u User) RecordID() string        { return u.ID }
func (u User) RecordOwner() string     { return u.ID }
func (u User) RecordCreatedAt() string { return u.CreatedAt }

// LessonReport is the monthly payroll rollup over lesson records.
type LessonReport struct {
	Month        string `json:"month"`
	LessonCount  int    `json:"lessonCount"`
	TotalMinutes int    `json:"totalMinutes"`
}
