package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/speech"
)

// Clip keys of the media view. Warnings are keyed WarningClip(i).
const ClipSummary = "summary"

const warningClipPrefix = "warning-"

// WarningClip keys the speech clip over warning i.
func WarningClip(i int) string {
	return warningClipPrefix + strconv.Itoa(i)
}

// MediaState is a point-in-time copy of a MediaView.
type MediaState struct {
	FileName string
	MimeType string
	Size     int
	Busy     bool
	Result   *legal.MediaAnalysisResult
	Error    string
	Limit    int64
}

// Passed reports whether an analysis is present and found no warnings.
func (s MediaState) Passed() bool {
	return s.Result != nil && s.Result.Passed()
}

// MediaView is the contract media analyzer.
type MediaView struct {
	base

	fileName string
	mimeType string
	size     int
	result   *legal.MediaAnalysisResult
	errMsg   string
}

func newMediaView(deps Deps) *MediaView {
	return &MediaView{base: newBase(ViewMedia, deps)}
}

// SupportedMedia reports whether mimeType is an image or video type.
func SupportedMedia(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") || strings.HasPrefix(mimeType, "video/")
}

// Submit analyzes one uploaded file. Files that are not images or videos
// fail with ErrUnsupportedMedia and files over the limit with
// ErrMediaTooLarge; both leave a message in the view. A busy or closed view
// rejects the file without touching its state.
func (v *MediaView) Submit(ctx context.Context, fileName, mimeType string, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	v.mu.Lock()
	if err := v.readyLocked(); err != nil {
		v.mu.Unlock()
		return err
	}
	if !SupportedMedia(mimeType) {
		v.errMsg = fmt.Sprintf("%s is not an image or video.", fileName)
		v.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnsupportedMedia, mimeType)
	}
	if limit := v.deps.MaxMediaBytes; int64(len(data)) > limit {
		v.errMsg = fmt.Sprintf("%s is larger than the %s limit.", fileName, formatLimit(limit))
		v.mu.Unlock()
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrMediaTooLarge, len(data), limit)
	}
	if err := v.beginLocked(); err != nil {
		v.mu.Unlock()
		return err
	}
	v.fileName, v.mimeType, v.size = fileName, mimeType, len(data)
	v.mu.Unlock()

	res, err := v.deps.Gateway.AnalyzeMedia(ctx, data, mimeType)

	v.mu.Lock()
	defer v.mu.Unlock()
	if endErr := v.endLocked(); endErr != nil {
		return endErr
	}

	v.resetClipsLocked()
	if err != nil {
		v.logger.Warn("media analysis failed", "error", err, "mime_type", mimeType)
		v.result, v.errMsg = nil, MediaFallback
		return nil
	}
	if res.KeyPoints == nil {
		res.KeyPoints = []string{}
	}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	v.result, v.errMsg = &res, ""
	return nil
}

// formatLimit renders n bytes in the largest unit it reaches.
func formatLimit(n int64) string {
	switch {
	case n >= 1<<20:
		return strconv.FormatFloat(float64(n)/(1<<20), 'f', -1, 64) + " MB"
	case n >= 1<<10:
		return strconv.FormatFloat(float64(n)/(1<<10), 'f', -1, 64) + " KB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}

// Snapshot copies the view state.
func (v *MediaView) Snapshot() MediaState {
	v.mu.Lock()
	defer v.mu.Unlock()

	state := MediaState{
		FileName: v.fileName,
		MimeType: v.mimeType,
		Size:     v.size,
		Busy:     v.busy,
		Error:    v.errMsg,
		Limit:    v.deps.MaxMediaBytes,
	}
	if v.result != nil {
		res := *v.result
		res.KeyPoints = append([]string{}, v.result.KeyPoints...)
		res.Warnings = append([]string{}, v.result.Warnings...)
		state.Result = &res
	}
	return state
}

// Passed reports whether the current analysis found no warnings.
func (v *MediaView) Passed() bool {
	return v.Snapshot().Passed()
}

// Clip returns the speech clip over the summary or one warning.
func (v *MediaView) Clip(key string) (*speech.Clip, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.result == nil {
		return nil, false
	}

	var text string
	switch {
	case key == ClipSummary:
		text = v.result.Summary
	case strings.HasPrefix(key, warningClipPrefix):
		i, err := strconv.Atoi(strings.TrimPrefix(key, warningClipPrefix))
		if err != nil || i < 0 || i >= len(v.result.Warnings) {
			return nil, false
		}
		text = v.result.Warnings[i]
	}
	if text == "" {
		return nil, false
	}
	return v.clipLocked(key, text), true
}
