package mongorepo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/tutor-backend/internal/domain"
)

// Documents store ids as canonical uuid strings so they stay readable in the
// shell and match the SQL backend's identifiers.

type lessonDoc struct {
	ID              string          `bson:"_id"`
	Subject         string          `bson:"subject"`
	Topic           string          `bson:"topic"`
	Title           string          `bson:"title"`
	Difficulty      string          `bson:"difficulty"`
	DurationMinutes int             `bson:"duration_minutes"`
	Summary         string          `bson:"summary,omitempty"`
	Tags            []string        `bson:"tags"`
	Sections        []sectionDoc    `bson:"content"`
	ExercisesJSON   string          `bson:"exercises_json,omitempty"`
	ResourcesJSON   string          `bson:"resources_json,omitempty"`
	CreatedBy       string          `bson:"created_by,omitempty"`
	CreatedAt       time.Time       `bson:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at"`
}

type sectionDoc struct {
	Title   string `bson:"title"`
	Content string `bson:"content"`
	Order   int    `bson:"order"`
	Type    string `bson:"type"`
}

func toLessonDoc(l *types.Lesson) lessonDoc {
	d := lessonDoc{
		ID:              l.ID.String(),
		Subject:         l.Subject,
		Topic:           l.Topic,
		Title:           l.Title,
		Difficulty:      l.Difficulty,
		DurationMinutes: l.DurationMinutes,
		Summary:         l.Summary,
		Tags:            l.TagList(),
		ExercisesJSON:   string(l.Exercises),
		ResourcesJSON:   string(l.Resources),
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	for _, s := range l.Sections() {
		d.Sections = append(d.Sections, sectionDoc{Title: s.Title, Content: s.Content, Order: s.Order, Type: s.Type})
	}
	if l.CreatedBy != nil {
		d.CreatedBy = l.CreatedBy.String()
	}
	return d
}

func (d lessonDoc) toDomain() (*types.Lesson, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	l := &types.Lesson{
		ID:              id,
		Subject:         d.Subject,
		Topic:           d.Topic,
		Title:           d.Title,
		Difficulty:      d.Difficulty,
		DurationMinutes: d.DurationMinutes,
		Summary:         d.Summary,
		Exercises:       rawOrEmpty(d.ExercisesJSON),
		Resources:       rawOrEmpty(d.ResourcesJSON),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	l.SetTags(d.Tags)
	sections := make([]types.LessonSection, 0, len(d.Sections))
	for _, s := range d.Sections {
		sections = append(sections, types.LessonSection{Title: s.Title, Content: s.Content, Order: s.Order, Type: s.Type})
	}
	l.Content = types.JSONOrEmpty(sections)
	if d.CreatedBy != "" {
		if cb, err := uuid.Parse(d.CreatedBy); err == nil {
			l.CreatedBy = &cb
		}
	}
	return l, nil
}

type completedDoc struct {
	LessonID       string     `bson:"lesson_id"`
	Title          string     `bson:"title"`
	Completed      bool       `bson:"completed"`
	CompletionDate *time.Time `bson:"completion_date,omitempty"`
	Score          *float64   `bson:"score,omitempty"`
	TimeSpent      int        `bson:"time_spent"`
}

type currentDoc struct {
	LessonID     string    `bson:"lesson_id"`
	Title        string    `bson:"title"`
	Progress     float64   `bson:"progress"`
	LastPosition string    `bson:"last_position,omitempty"`
	Notes        string    `bson:"notes,omitempty"`
	TimeSpent    int       `bson:"time_spent"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// progressDoc is keyed by user id; version guards replaces.
type progressDoc struct {
	UserID           string         `bson:"_id"`
	CompletedLessons []completedDoc `bson:"completed_lessons"`
	CurrentLesson    *currentDoc    `bson:"current_lesson"`
	TotalTimeSpent   int            `bson:"total_time_spent"`
	LastActive       *time.Time     `bson:"last_active,omitempty"`
	Version          int            `bson:"version"`
	CreatedAt        time.Time      `bson:"created_at"`
	UpdatedAt        time.Time      `bson:"updated_at"`
}

func toProgressDoc(row *types.LearningProgress) (progressDoc, error) {
	st, err := row.Decode()
	if err != nil {
		return progressDoc{}, err
	}
	d := progressDoc{
		UserID:           row.UserID.String(),
		CompletedLessons: make([]completedDoc, 0, len(st.CompletedLessons)),
		TotalTimeSpent:   st.TotalTimeSpent,
		LastActive:       st.LastActive,
		Version:          row.Version,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	for _, c := range st.CompletedLessons {
		d.CompletedLessons = append(d.CompletedLessons, completedDoc{
			LessonID:       c.LessonID.String(),
			Title:          c.Title,
			Completed:      c.Completed,
			CompletionDate: c.CompletionDate,
			Score:          c.Score,
			TimeSpent:      c.TimeSpent,
		})
	}
	if cur := st.CurrentLesson; cur != nil {
		d.CurrentLesson = &currentDoc{
			LessonID:     cur.LessonID.String(),
			Title:        cur.Title,
			Progress:     cur.Progress,
			LastPosition: cur.LastPosition,
			Notes:        cur.Notes,
			TimeSpent:    cur.TimeSpent,
			UpdatedAt:    cur.UpdatedAt,
		}
	}
	return d, nil
}

// toDomain skips records whose lesson id does not parse.
func (d progressDoc) toDomain() (*types.LearningProgress, error) {
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	st := &types.ProgressState{
		UserID:         userID,
		TotalTimeSpent: d.TotalTimeSpent,
		LastActive:     d.LastActive,
	}
	for _, c := range d.CompletedLessons {
		lid, err := uuid.Parse(c.LessonID)
		if err != nil {
			continue
		}
		st.CompletedLessons = append(st.CompletedLessons, types.CompletedLessonRecord{
			LessonID:       lid,
			Title:          c.Title,
			Completed:      c.Completed,
			CompletionDate: c.CompletionDate,
			Score:          c.Score,
			TimeSpent:      c.TimeSpent,
		})
	}
	if cur := d.CurrentLesson; cur != nil {
		if lid, err := uuid.Parse(cur.LessonID); err == nil {
			st.CurrentLesson = &types.CurrentLessonRecord{
				LessonID:     lid,
				Title:        cur.Title,
				Progress:     cur.Progress,
				LastPosition: cur.LastPosition,
				Notes:        cur.Notes,
				TimeSpent:    cur.TimeSpent,
				UpdatedAt:    cur.UpdatedAt,
			}
		}
	}
	row := &types.LearningProgress{
		ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte("learning_progress:"+d.UserID)),
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	row.Encode(st)
	return row, nil
}

type activityDoc struct {
	ID        string         `bson:"_id"`
	UserID    string         `bson:"user_id"`
	Type      string         `bson:"type"`
	Timestamp time.Time      `bson:"timestamp"`
	LessonID  string         `bson:"lesson_id,omitempty"`
	TimeSpent *int           `bson:"time_spent,omitempty"`
	Score     *float64       `bson:"score,omitempty"`
	Details   map[string]any `bson:"details,omitempty"`
}

func toActivityDoc(e *types.ActivityEvent) activityDoc {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	d := activityDoc{
		ID:        e.ID.String(),
		UserID:    e.UserID.String(),
		Type:      e.Type,
		Timestamp: e.Timestamp,
		TimeSpent: e.TimeSpent,
		Score:     e.Score,
		Details:   e.DetailsMap(),
	}
	if e.LessonID != nil {
		d.LessonID = e.LessonID.String()
	}
	return d
}

func (d activityDoc) toDomain() (*types.ActivityEvent, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	var lessonID *uuid.UUID
	if d.LessonID != "" {
		if lid, err := uuid.Parse(d.LessonID); err == nil {
			lessonID = &lid
		}
	}
	e := types.NewActivityEvent(userID, d.Type, d.Timestamp, lessonID, d.TimeSpent, d.Score, normalizeDetails(d.Details))
	e.ID = id
	return e, nil
}

type achievementDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Type        string    `bson:"type"`
	EarnedAt    time.Time `bson:"earned_at"`
}

func (d achievementDoc) toDomain() (*types.Achievement, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	return &types.Achievement{ID: id, UserID: userID, Name: d.Name, Description: d.Description, Type: d.Type, EarnedAt: d.EarnedAt}, nil
}

type referenceDoc struct {
	Title  string `bson:"title"`
	Source string `bson:"source"`
	URL    string `bson:"url,omitempty"`
}

type qaDoc struct {
	ID         string         `bson:"_id"`
	UserID     string         `bson:"user_id"`
	LessonID   string         `bson:"lesson_id,omitempty"`
	Question   string         `bson:"question"`
	Context    string         `bson:"context,omitempty"`
	Answer     string         `bson:"answer"`
	References []referenceDoc `bson:"references"`
	Status     string         `bson:"status"`
	CreatedAt  time.Time      `bson:"created_at"`
	AnsweredAt *time.Time     `bson:"answered_at,omitempty"`
}

func toQADoc(q *types.QAItem) qaDoc {
	d := qaDoc{
		ID:         q.ID.String(),
		UserID:     q.UserID.String(),
		Question:   q.Question,
		Context:    q.Context,
		Answer:     q.Answer,
		References: []referenceDoc{},
		Status:     q.Status,
		CreatedAt:  q.CreatedAt,
		AnsweredAt: q.AnsweredAt,
	}
	if q.LessonID != nil {
		d.LessonID = q.LessonID.String()
	}
	for _, r := range q.ReferenceList() {
		d.References = append(d.References, referenceDoc{Title: r.Title, Source: r.Source, URL: r.URL})
	}
	return d
}

func (d qaDoc) toDomain() (*types.QAItem, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	q := &types.QAItem{
		ID:         id,
		UserID:     userID,
		Question:   d.Question,
		Context:    d.Context,
		Answer:     d.Answer,
		Status:     d.Status,
		CreatedAt:  d.CreatedAt,
		AnsweredAt: d.AnsweredAt,
	}
	if d.LessonID != "" {
		if lid, err := uuid.Parse(d.LessonID); err == nil {
			q.LessonID = &lid
		}
	}
	refs := make([]types.Reference, 0, len(d.References))
	for _, r := range d.References {
		refs = append(refs, types.Reference{Title: r.Title, Source: r.Source, URL: r.URL})
	}
	q.SetReferences(refs)
	return q, nil
}

type userDoc struct {
	ID              string    `bson:"_id"`
	Email           string    `bson:"email"`
	DisplayName     string    `bson:"display_name"`
	AvatarURL       string    `bson:"avatar_url,omitempty"`
	PreferencesJSON string    `bson:"preferences_json"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func toUserDoc(u *types.User) userDoc {
	prefs := string(u.Preferences)
	if prefs == "" {
		prefs = "{}"
	}
	return userDoc{
		ID:              u.ID.String(),
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		AvatarURL:       u.AvatarURL,
		PreferencesJSON: prefs,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (d userDoc) toDomain() (*types.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	prefs := datatypes.JSON(d.PreferencesJSON)
	if !json.Valid(prefs) {
		prefs = datatypes.JSON("{}")
	}
	return &types.User{
		ID:          id,
		Email:       d.Email,
		DisplayName: d.DisplayName,
		AvatarURL:   d.AvatarURL,
		Preferences: prefs,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func rawOrEmpty(s string) datatypes.JSON {
	if s == "" || !json.Valid([]byte(s)) {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(s)
}

// normalizeDetails converts decoded bson values into plain JSON-friendly
// values by round-tripping through encoding/json.
func normalizeDetails(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	b, err := json.Marshal(in)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]any{}
	}
	return out
}
