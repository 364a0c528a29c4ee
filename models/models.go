package models

import "time"

// TranscriptSegment is one spoken utterance window. Times are milliseconds
// from the start of the video.
type TranscriptSegment struct {
	Text     string `json:"text"`
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	Duration int64  `json:"duration"`
}

// TranscriptData aggregates everything resolved for a video in one fetch.
// It is constructed per request and discarded after summarization.
// The secondary-language fields are best effort and may be empty.
type TranscriptData struct {
	Title          string              `json:"title"`
	VideoID        string              `json:"videoId"`
	ThumbnailURL   string              `json:"thumbnailUrl,omitempty"`
	FullTranscript string              `json:"fullTranscript"`
	Segments       []TranscriptSegment `json:"transcriptWithTimeCodes"`

	FullTranscriptKo string              `json:"fullTranscriptKo,omitempty"`
	SegmentsKo       []TranscriptSegment `json:"transcriptWithTimeCodesKo,omitempty"`
}

// Summary is the persisted entity owned by the CMS.
type Summary struct {
	ID          int       `json:"id,omitempty"`
	DocumentID  string    `json:"documentId"`
	VideoID     string    `json:"videoId"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
	PublishedAt time.Time `json:"publishedAt,omitempty"`
}

// SummaryDraft is the writable subset sent on create.
type SummaryDraft struct {
	VideoID string `json:"videoId"`
	UserID  string `json:"userId,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SummaryUpdate is the writable subset sent on update.
type SummaryUpdate struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AuthUser mirrors the CMS users-permissions record.
type AuthUser struct {
	ID         int       `json:"id"`
	DocumentID string    `json:"documentId"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName,omitempty"`
	LastName   string    `json:"lastName,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	Credits    int       `json:"credits"`
	Image      *Image    `json:"image,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Confirmed  bool      `json:"confirmed"`
	Blocked    bool      `json:"blocked"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// ProfileUpdate is the writable subset of AuthUser.
type ProfileUpdate struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// AuthSession is the CMS reply to a successful login or registration.
type AuthSession struct {
	JWT  string   `json:"jwt"`
	User AuthUser `json:"user"`
}

// Image is a CMS media library entry.
type Image struct {
	ID              int    `json:"id"`
	DocumentID      string `json:"documentId"`
	URL             string `json:"url"`
	AlternativeText string `json:"alternativeText,omitempty"`
}

// APIError is the wire form of a failure inside the response envelope.
type APIError struct {
	Status  int                 `json:"status"`
	Name    string              `json:"name"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// Pagination is CMS-style list metadata.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

// TranscriptCacheEntry is a cached transcript resolution for one video and
// language; derived data, safe to refetch.
type TranscriptCacheEntry struct {
	VideoID      string              `json:"video_id"`
	Lang         string              `json:"lang"`
	Title        string              `json:"title"`
	ThumbnailURL string              `json:"thumbnail_url"`
	Transcript   string              `json:"transcript"`
	Segments     []TranscriptSegment `json:"segments"`
	CreatedAt    time.Time           `json:"created_at"`
}
