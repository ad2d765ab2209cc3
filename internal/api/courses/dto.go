package courses

import (
	"learning-platform/internal/domain/access"
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/service"
)

type CourseDTO struct {
	ID                 uint    `json:"id"`
	Title              string  `json:"title"`
	ShortDescription   string  `json:"short_description"`
	Description        string  `json:"description,omitempty"`
	CoverImageURL      *string `json:"cover_image_url"`
	Level              string  `json:"level"`
	Language           string  `json:"language"`
	Category           string  `json:"category"`
	EstimatedHours     *int    `json:"estimated_hours"`
	IsPremium          bool    `json:"is_premium"`
	Price              string  `json:"price"`
	HasAccess          bool    `json:"has_access"`
	ProgressPercentage *int    `json:"progress_percentage,omitempty"`
}

type AccessDTO struct {
	HasAccess bool          `json:"has_access"`
	Reason    access.Reason `json:"reason"`
}

// LessonDTO leaves the protected fields nil unless the caller has access.
type LessonDTO struct {
	ID                   uint    `json:"id"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	ContentType          string  `json:"content_type"`
	OrderIndex           int     `json:"order_index"`
	EstimatedMinutes     *int    `json:"estimated_minutes"`
	VideoDurationSeconds *int    `json:"video_duration_seconds"`
	IsFree               bool    `json:"is_free"`
	CanDownload          bool    `json:"can_download"`
	HasAccess            bool    `json:"has_access"`
	VideoURL             *string `json:"video_url,omitempty"`
	FileURL              *string `json:"file_url,omitempty"`
	FileType             *string `json:"file_type,omitempty"`
	FileSizeBytes        *int64  `json:"file_size_bytes,omitempty"`
	TextContent          *string `json:"text_content,omitempty"`
}

type ChapterDTO struct {
	ID          uint        `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	OrderIndex  int         `json:"order_index"`
	Lessons     []LessonDTO `json:"lessons"`
}

type StructureResponse struct {
	Course   CourseDTO    `json:"course"`
	Chapters []ChapterDTO `json:"chapters"`
}

type LessonContentResponse struct {
	Lesson   LessonDTO     `json:"lesson"`
	CourseID uint          `json:"course_id"`
	Reason   access.Reason `json:"reason"`
}

func buildCourseDTO(c courses.Course, d access.Decision, pct *int, withDescription bool) CourseDTO {
	dto := CourseDTO{
		ID:                 c.ID,
		Title:              c.Title,
		ShortDescription:   c.ShortDescription,
		CoverImageURL:      c.CoverImageURL,
		Level:              c.Level,
		Language:           c.Language,
		Category:           c.Category,
		EstimatedHours:     c.EstimatedHours,
		IsPremium:          c.IsPremium,
		Price:              c.Price,
		HasAccess:          d.Granted,
		ProgressPercentage: pct,
	}
	if withDescription {
		dto.Description = c.Description
	}
	return dto
}

func buildLessonDTO(l courses.Lesson, d access.Decision) LessonDTO {
	dto := LessonDTO{
		ID:                   l.ID,
		Title:                l.Title,
		Description:          l.Description,
		ContentType:          l.ContentType,
		OrderIndex:           l.OrderIndex,
		EstimatedMinutes:     l.EstimatedMinutes,
		VideoDurationSeconds: l.VideoDurationSeconds,
		IsFree:               l.IsFree,
		CanDownload:          l.CanDownload,
		HasAccess:            d.Granted,
	}
	if !d.Granted {
		return dto
	}
	dto.VideoURL = l.VideoURL
	dto.FileURL = l.FileURL
	dto.FileType = l.FileType
	dto.FileSizeBytes = l.FileSizeBytes
	dto.TextContent = l.TextContent
	return dto
}

func buildStructure(st *service.CourseStructure) StructureResponse {
	resp := StructureResponse{
		Course:   buildCourseDTO(st.Course, st.Access, nil, true),
		Chapters: make([]ChapterDTO, 0, len(st.Chapters)),
	}
	for _, ch := range st.Chapters {
		dto := ChapterDTO{
			ID:          ch.Chapter.ID,
			Title:       ch.Chapter.Title,
			Description: ch.Chapter.Description,
			OrderIndex:  ch.Chapter.OrderIndex,
			Lessons:     make([]LessonDTO, 0, len(ch.Lessons)),
		}
		for _, lv := range ch.Lessons {
			dto.Lessons = append(dto.Lessons, buildLessonDTO(lv.Lesson, lv.Access))
		}
		resp.Chapters = append(resp.Chapters, dto)
	}
	return resp
}
