package repos

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/tutordesk/tutordesk-backend/internal/remote"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

// Mapper is the per-entity translation pair between the application shape
// (camelCase patches / structs) and the remote row shape (snake_case
// columns). ToRow is sparse: it emits only the keys present in the patch, so
// partial updates never clobber untouched columns. FromRow is total: every
// required entity field is populated, applying defaults where a column is
// legitimately absent. The asymmetry is intentional.
type Mapper[T any] struct {
	ToRow   func(patch map[string]any) remote.Row
	FromRow func(row remote.Row) T
}

// patchOf renders an entity as a camelCase patch via its JSON shape. Fields
// elided by omitempty simply stay absent, which FromRow's defaults cover.
func patchOf(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return out
}

func clonePatch(patch map[string]any) map[string]any {
	out := make(map[string]any, len(patch)+3)
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func copyKey(dst remote.Row, src map[string]any, field, column string) {
	if v, ok := src[field]; ok {
		dst[column] = v
	}
}

// copyJSONKey marshals the patch value into a jsonb column payload.
func copyJSONKey(dst remote.Row, src map[string]any, field, column string) {
	v, ok := src[field]
	if !ok {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	dst[column] = datatypes.JSON(raw)
}

// stringify normalizes a driver-typed value for comparison and display.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}

func rowString(row remote.Row, column string) string {
	return stringify(row[column])
}

func rowStringDefault(row remote.Row, column, fallback string) string {
	if s := rowString(row, column); s != "" {
		return s
	}
	return fallback
}

// rowTime reads a timestamp column as an RFC 3339 string; absent or null
// columns read as "" so no null ever propagates upward.
func rowTime(row remote.Row, column string) string {
	switch t := row[column].(type) {
	case nil:
		return ""
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

// rowDate reads a date column as "2006-01-02".
func rowDate(row remote.Row, column string) string {
	switch t := row[column].(type) {
	case time.Time:
		return t.Format("2006-01-02")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	case string:
		if i := strings.IndexByte(t, 'T'); i == 10 {
			return t[:10]
		}
		return t
	case []byte:
		return rowDate(remote.Row{column: string(t)}, column)
	default:
		return ""
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(string(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func rowFloat(row remote.Row, column string) float64 {
	f, _ := asFloat(row[column])
	return f
}

func rowInt(row remote.Row, column string) int {
	f, _ := asFloat(row[column])
	return int(f)
}

func rowFloatPtr(row remote.Row, column string) *float64 {
	v, ok := row[column]
	if !ok || v == nil {
		return nil
	}
	f, ok := asFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func rowIntPtr(row remote.Row, column string) *int {
	v, ok := row[column]
	if !ok || v == nil {
		return nil
	}
	f, ok := asFloat(v)
	if !ok {
		return nil
	}
	i := int(f)
	return &i
}

// decodeJSONColumn unmarshals a jsonb column value (raw bytes, string, or an
// already-decoded Go value) into out. Returns false when there is nothing
// usable; callers fall back to the zero value.
func decodeJSONColumn(v any, out any) bool {
	var raw []byte
	switch t := v.(type) {
	case nil:
		return false
	case datatypes.JSON:
		raw = []byte(t)
	case []byte:
		raw = t
	case string:
		raw = []byte(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return false
		}
		raw = b
	}
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func rowStringSlice(row remote.Row, column string) []string {
	var out []string
	if !decodeJSONColumn(row[column], &out) {
		return nil
	}
	return out
}

func rowAttachments(row remote.Row, column string) []types.Attachment {
	var out []types.Attachment
	if !decodeJSONColumn(row[column], &out) {
		return nil
	}
	return out
}

func rowMeta(row remote.Row, column string) *types.MessageMeta {
	var out types.MessageMeta
	if !decodeJSONColumn(row[column], &out) {
		return nil
	}
	if out == (types.MessageMeta{}) {
		return nil
	}
	return &out
}

var projectMapper = Mapper[types.Project]{
	ToRow: func(p map[string]any) remote.Row {
		row := remote.Row{}
		copyKey(row, p, "id", "id")
		copyKey(row, p, "userId", "user_id")
		copyKey(row, p, "name", "name")
		copyKey(row, p, "createdAt", "created_at")
		return row
	},
	FromRow: func(row remote.Row) types.Project {
		return types.Project{
			ID:        rowString(row, "id"),
			UserID:    rowString(row, "user_id"),
			Name:      rowString(row, "name"),
			CreatedAt: rowTime(row, "created_at"),
		}
	},
}

var threadMapper = Mapper[types.Thread]{
	ToRow: func(p map[string]any) remote.Row {
		row := remote.Row{}
		copyKey(row, p, "id", "id")
		copyKey(row, p, "userId", "user_id")
		copyKey(row, p, "projectId", "project_id")
		copyKey(row, p, "title", "title")
		copyKey(row, p, "createdAt", "created_at")
		copyKey(row, p, "updatedAt", "updated_at")
		return row
	},
	FromRow: func(row remote.Row) types.Thread {
		return types.Thread{
			ID:        rowString(row, "id"),
			UserID:    rowString(row, "user_id"),
			ProjectID: rowString(row, "project_id"),
			Title:     rowString(row, "title"),
			CreatedAt: rowTime(row, "created_at"),
			UpdatedAt: rowTime(row, "updated_at"),
		}
	},
}

// The message "tags" field lives in the remote "notes" column; the rename is
// historical and must survive round trips.
var messageMapper = Mapper[types.Message]{
	ToRow: func(p map[string]any) remote.Row {
		row := remote.Row{}
		copyKey(row, p, "id", "id")
		copyKey(row, p, "userId", "user_id")
		copyKey(row, p, "threadId", "thread_id")
		copyKey(row, p, "role", "role")
		copyKey(row, p, "content", "content")
		copyKey(row, p, "createdAt", "created_at")
		copyJSONKey(row, p, "tags", "notes")
		copyJSONKey(row, p, "attachments", "attachments")
		copyJSONKey(row, p, "meta", "meta")
		return row
	},
	FromRow: func(row remote.Row) types.Message {
		return types.Message{
			ID:          rowString(row, "id"),
			UserID:      rowString(row, "user_id"),
			ThreadID:    rowString(row, "thread_id"),
			Role:        rowString(row, "role"),
			Content:     rowString(row, "content"),
			Tags:        rowStringSlice(row, "notes"),
			Attachments: rowAttachments(row, "attachments"),
			Meta:        rowMeta(row, "meta"),
			CreatedAt:   rowTime(row, "created_at"),
		}
	},
}

// Homework "dueAt" maps to the "due_date" column.
var homeworkMapper = Mapper[types.Homework]{
	ToRow: func(p map[string]any) remote.Row {
		row := remote.Row{}
		copyKey(row, p, "id", "id")
		copyKey(row, p, "userId", "user_id")
		copyKey(row, p, "projectId", "project_id")
		copyKey(row, p, "title", "title")
		copyKey(row, p, "detail", "detail")
		copyKey(row, p, "assignedAt", "assigned_at")
		copyKey(row, p, "dueAt", "due_date")
		copyKey(row, p, "status", "status")
		copyKey(row, p, "createdAt", "created_at")
		copyKey(row, p, "updatedAt", "updated_at")
		copyJSONKey(row, p, "attachments", "attachments")
		return row
	},
	FromRow: func(row remote.Row) types.Homework {
		return types.Homework{
			ID:          rowString(row, "id"),
			UserID:      rowString(row, "user_id"),
			ProjectID:   rowString(row, "project_id"),
			Title:       rowString(row, "title"),
			Detail:      rowString(row, "detail"),
			AssignedAt:  rowDate(row, "assigned_at"),
			DueAt:       rowDate(row, "due_date"),
			Status:      rowStringDefault(row, "status", types.HomeworkStatusTodo),
			Attachments: rowAttachments(row, "attachments"),
			CreatedAt:   rowTime(row, "created_at"),
			UpdatedAt:   rowTime(row, "updated_at"),
		}
	},
}

var testSetMapper = Mapper[types.TestSet]{
	ToRow: func(p map[string]any) remote.Row {
		row := remote.Row{}
		copyKey(row, p, "id", "id")
		copyKey(row, p, "userId", "user_id")
		copyKey(row, p, "date", "date")
		copyKey(row, p, "name", "name")
		copyKey(row, p, "grade", "grade")
		copyKey(row, p, "memo", "memo")
		copyKey(row, p, "createdAt", "created_at")
		copyKey(row, p, "updatedAt", "updated_at")
		return row
	},
	FromRow: func(row remote.Row) types.TestSet {
		return types.TestSet{
			ID:        rowString(row, "id"),
			UserID:    rowString(row, "user_id"),
			Date:      rowDate(row, "date"),
			Name:      rowString(row, "name"),
			Grade:     rowString(row, "grade"),
			Memo:      rowString(row, "memo"),
			CreatedAt: rowTime(row, "created_at"),
			UpdatedAt: rowTime(row, "updated_at"),
		}
	},
}

var testScoreMapper = Mapper[types.TestScore]{
	ToRow: func(p map[string]any) remote.Row {
		row := remote.Row{}
		copyKey(row, p, "id", "id")
		copyKey(row, p, "testSetId", "test_set_id")
		copyKey(row, p, "subject", "subject")
		copyKey(row, p, "score", "score")
		copyKey(row, p, "average", "average")
		copyKey(row, p, "maxScore", "max_score")
		copyKey(row, p, "rank", "rank")
		copyKey(row, p, "deviation", "deviation")
		copyKey(row, p, "createdAt", "created_at")
		copyJSONKey(row, p, "problemImages", "problem_images")
		copyJSONKey(row, p, "answerImages", "answer_images")
		return row
	},
	FromRow: func(row remote.Row) types.TestScore {
		return types.TestScore{
			ID:            rowString(row, "id"),
			TestSetID:     rowString(row, "test_set_id"),
			Subject:       rowString(row, "subject"),
			Score:         rowFloat(row, "score"),
			Average:       rowFloatPtr(row, "average"),
			MaxScore:      rowFloat(row, "max_score"),
			Rank:          rowIntPtr(row, "rank"),
			Deviation:     rowFloatPtr(row, "deviation"),
			ProblemImages: rowStringSlice(row, "problem_images"),
			AnswerImages:  rowStringSlice(row, "answer_images"),
			CreatedAt:     rowTime(row, "created_at"),
		}
	},
}

var lessonRecordMapper = Mapper[types.LessonRecord]{
	ToRow: func(p map[string]any) remote.Row {
		row := remote.Row{}
		copyKey(row, p, "id", "id")
		copyKey(row, p, "userId", "user_id")
		copyKey(row, p, "date", "date")
		copyKey(row, p, "duration", "duration")
		copyKey(row, p, "startTime", "start_time")
		copyKey(row, p, "endTime", "end_time")
		copyKey(row, p, "content", "content")
		copyKey(row, p, "memo", "memo")
		copyKey(row, p, "createdAt", "created_at")
		copyKey(row, p, "updatedAt", "updated_at")
		return row
	},
	FromRow: func(row remote.Row) types.LessonRecord {
		return types.LessonRecord{
			ID:        rowString(row, "id"),
			UserID:    rowString(row, "user_id"),
			Date:      rowDate(row, "date"),
			Duration:  rowInt(row, "duration"),
			StartTime: rowString(row, "start_time"),
			EndTime:   rowString(row, "end_time"),
			Content:   rowString(row, "content"),
			Memo:      rowString(row, "memo"),
			CreatedAt: rowTime(row, "created_at"),
			UpdatedAt: rowTime(row, "updated_at"),
		}
	},
}

var userMapper = Mapper[types.User]{
	ToRow: func(p map[string]any) remote.Row {
		row := remote.Row{}
		copyKey(row, p, "id", "id")
		copyKey(row, p, "email", "email")
		copyKey(row, p, "createdAt", "created_at")
		return row
	},
	FromRow: func(row remote.Row) types.User {
		return types.User{
			ID:        rowString(row, "id"),
			Email:     rowString(row, "email"),
			CreatedAt: rowTime(row, "created_at"),
		}
	},
}
