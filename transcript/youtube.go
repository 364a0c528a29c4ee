package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sjlee-dev/vidbrief/errors"
	"github.com/sjlee-dev/vidbrief/models"
)

// youtubeClient scrapes the YouTube internal data API: one player call for
// metadata and the caption track list, then the track's timedtext URL for
// the segments themselves.
type youtubeClient struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

func newYouTubeClient(cfg Config) *youtubeClient {
	base := cfg.BaseURL
	if base == "" {
		base = "https://www.youtube.com"
	}
	return &youtubeClient{
		http:      &http.Client{},
		baseURL:   strings.TrimRight(base, "/"),
		userAgent: cfg.UserAgent,
	}
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type videoInfo struct {
	VideoID       string
	Title         string
	ThumbnailURL  string
	CaptionTracks []captionTrack
}

type playerResponse struct {
	VideoDetails struct {
		VideoID   string `json:"videoId"`
		Title     string `json:"title"`
		Thumbnail struct {
			Thumbnails []struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
	Captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

// getVideoInfo fetches video metadata and the available caption tracks.
// hl sets the preferred interface language for the lookup.
func (c *youtubeClient) getVideoInfo(ctx context.Context, videoID, hl string) (*videoInfo, error) {
	const op = "youtubeClient.getVideoInfo"

	payload := map[string]interface{}{
		"videoId": videoID,
		"context": map[string]interface{}{
			"client": map[string]interface{}{
				"clientName":    "ANDROID",
				"clientVersion": "20.10.38",
				"hl":            hl,
			},
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to encode player request")
	}

	endpoint := c.baseURL + "/youtubei/v1/player?prettyPrint=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to build player request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Timeout(op, err)
		}
		return nil, errors.Network(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.RemoteService(op, resp.StatusCode, "",
			fmt.Sprintf("video info request failed: %s", resp.Status))
	}

	var player playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, errors.Network(op, err)
	}

	if player.PlayabilityStatus.Status != "" && player.PlayabilityStatus.Status != "OK" {
		reason := player.PlayabilityStatus.Reason
		if reason == "" {
			reason = "video is not playable"
		}
		return nil, errors.NotFound(op, nil, reason)
	}

	if player.VideoDetails.VideoID == "" {
		return nil, errors.NotFound(op, nil, "Video not found")
	}

	info := &videoInfo{
		VideoID:       player.VideoDetails.VideoID,
		Title:         player.VideoDetails.Title,
		CaptionTracks: player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks,
	}
	if info.Title == "" {
		info.Title = "Untitled Video"
	}
	if thumbs := player.VideoDetails.Thumbnail.Thumbnails; len(thumbs) > 0 {
		info.ThumbnailURL = cleanImageURL(thumbs[0].URL)
	}

	return info, nil
}

// pickTrack selects the caption track for a language: exact code match
// first, then prefix match, then any track when fallback is allowed.
func pickTrack(tracks []captionTrack, lang string, fallback bool) *captionTrack {
	for i := range tracks {
		if tracks[i].LanguageCode == lang {
			return &tracks[i]
		}
	}
	for i := range tracks {
		if strings.HasPrefix(tracks[i].LanguageCode, lang+"-") {
			return &tracks[i]
		}
	}
	if fallback && len(tracks) > 0 {
		return &tracks[0]
	}
	return nil
}

type timedTextResponse struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// getCaptions downloads one caption track and flattens it into segments.
func (c *youtubeClient) getCaptions(ctx context.Context, track captionTrack) ([]models.TranscriptSegment, error) {
	const op = "youtubeClient.getCaptions"

	trackURL, err := url.Parse(track.BaseURL)
	if err != nil {
		return nil, errors.Internal(op, err, "Invalid caption track URL")
	}
	query := trackURL.Query()
	query.Set("fmt", "json3")
	trackURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL.String(), nil)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to build caption request")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Timeout(op, err)
		}
		return nil, errors.Network(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.RemoteService(op, resp.StatusCode, "",
			fmt.Sprintf("caption request failed: %s", resp.Status))
	}

	var timedText timedTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&timedText); err != nil {
		return nil, errors.Network(op, err)
	}

	segments := make([]models.TranscriptSegment, 0, len(timedText.Events))
	for _, event := range timedText.Events {
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}
		line := strings.TrimSpace(strings.ReplaceAll(text.String(), "\n", " "))
		if line == "" {
			continue
		}
		segments = append(segments, models.TranscriptSegment{
			Text:     line,
			Start:    event.StartMs,
			End:      event.StartMs + event.DurationMs,
			Duration: event.DurationMs,
		})
	}

	if len(segments) == 0 {
		return nil, errors.NotFound(op, nil, "No caption segments in track")
	}

	return segments, nil
}

// cleanImageURL strips resize parameters so only the stable thumbnail URL
// is kept.
func cleanImageURL(raw string) string {
	if i := strings.Index(raw, "?"); i >= 0 {
		return raw[:i]
	}
	return raw
}

func joinSegments(segments []models.TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
