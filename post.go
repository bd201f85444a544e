package trailblog

import (
	"encoding/json"
	"html/template"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Post represents one journal entry, grouped under a trail state.
type Post struct {
	ID                 int64     `json:"id"`                           // ID is unique across the whole store, not just within a state
	State              string    `json:"state"`                        // State is the trail section code the post belongs to
	Slug               string    `json:"slug"`                         // Slug is the URL-friendly version of the subject
	Subject            string    `json:"subject"`                      // Subject is the post title
	Content            string    `json:"content"`                      // Content is the raw post body; newlines are kept as-is
	SubjectTranslation string    `json:"subjectTranslation,omitempty"` // SubjectTranslation is the translated title, empty until translated
	ContentTranslation string    `json:"contentTranslation,omitempty"` // ContentTranslation is the translated body, empty until translated
	Created            time.Time `json:"created"`                      // Created is set once at creation and never changes
	Deleted            bool      `json:"deleted"`                      // Deleted marks a soft-deleted post; it stays fetchable by id
}

// PostFields holds a partial update. Nil fields are left untouched. State,
// ID, and Created are not updatable.
type PostFields struct {
	Subject            *string
	Content            *string
	SubjectTranslation *string
	ContentTranslation *string
}

// Empty returns true if no field is set.
func (f PostFields) Empty() bool {
	return f.Subject == nil && f.Content == nil &&
		f.SubjectTranslation == nil && f.ContentTranslation == nil
}

// Apply copies the set fields onto the post and refreshes the slug when the
// subject changed.
func (f PostFields) Apply(p *Post) {
	if f.Subject != nil {
		p.Subject = *f.Subject
		p.Slug = slug.Make(p.Subject)
	}
	if f.Content != nil {
		p.Content = *f.Content
	}
	if f.SubjectTranslation != nil {
		p.SubjectTranslation = *f.SubjectTranslation
	}
	if f.ContentTranslation != nil {
		p.ContentTranslation = *f.ContentTranslation
	}
}

// NewPost builds an unpersisted post for the given state. The id is assigned
// by the store on Create.
func NewPost(state, subject, content string) *Post {
	return &Post{
		State:   state,
		Slug:    slug.Make(subject),
		Subject: subject,
		Content: content,
	}
}

// ValidatePostInput checks the required create fields. The state code is the
// caller's responsibility; routes only admit enumerated states.
func ValidatePostInput(subject, content string) error {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(content) == "" {
		return ErrInvalidPostInput
	}
	return nil
}

// HasTranslation returns true if the post has been translated.
func (p *Post) HasTranslation() bool {
	return p.SubjectTranslation != "" || p.ContentTranslation != ""
}

// CreatedDate returns the created date in the format Jan 2, 2006.
func (p *Post) CreatedDate() string {
	if p.Created.IsZero() {
		return ""
	}
	return p.Created.Format("Jan 2, 2006")
}

// ContentHTML returns the escaped content with newlines rendered as line
// breaks. The stored value keeps raw newlines.
func (p *Post) ContentHTML() template.HTML {
	return renderBody(p.Content)
}

// ContentTranslationHTML is ContentHTML for the translated body.
func (p *Post) ContentTranslationHTML() template.HTML {
	return renderBody(p.ContentTranslation)
}

func renderBody(body string) template.HTML {
	escaped := template.HTMLEscapeString(body)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// Serialize serializes the post to a byte slice.
func (p *Post) Serialize() ([]byte, error) {
	return json.Marshal(p)
}

// DeserializePost deserializes a byte slice to a post.
func DeserializePost(data []byte) (*Post, error) {
	var post Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// SerializePosts serializes an ordered post list to a byte slice.
func SerializePosts(posts []*Post) ([]byte, error) {
	if posts == nil {
		posts = []*Post{}
	}
	return json.Marshal(posts)
}

// DeserializePosts deserializes a byte slice to an ordered post list.
func DeserializePosts(data []byte) ([]*Post, error) {
	posts := []*Post{}
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
