package store

import (
	"cardionote-be/internal/entity"
	"cardionote-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// NoteConfig builds the store wiring for the notes collection.
func NoteConfig(persistence Persistence[entity.Note], log logger.ILogger) Config[entity.Note] {
	return Config[entity.Note]{
		Name:        notesCollection,
		Persistence: persistence,
		ID:          func(n entity.Note) uuid.UUID { return n.Id },
		Apply:       applyNoteFields,
		Logger:      log,
	}
}

// ECGResultConfig builds the store wiring for the analysis results
// collection.
func ECGResultConfig(persistence Persistence[entity.ECGResult], log logger.ILogger) Config[entity.ECGResult] {
	return Config[entity.ECGResult]{
		Name:        ecgResultsCollection,
		Persistence: persistence,
		ID:          func(r entity.ECGResult) uuid.UUID { return r.Id },
		Apply:       applyECGResultFields,
		Logger:      log,
	}
}

// applyNoteFields is the local mirror of the notes partial update.
func applyNoteFields(note entity.Note, fields map[string]interface{}) entity.Note {
	if title, ok := fields["title"].(string); ok {
		note.Title = title
	}
	if content, ok := fields["content"].(string); ok {
		note.Content = content
	}
	if tags, ok := fields["tags"].([]string); ok {
		note.Tags = tags
	}
	return note
}

func applyECGResultFields(result entity.ECGResult, fields map[string]interface{}) entity.ECGResult {
	if raw, ok := fields["raw_analysis"].(string); ok {
		result.RawAnalysis = raw
	}
	if interpretation, ok := fields["interpretation"].(string); ok {
		result.Interpretation = &interpretation
	}
	if plan, ok := fields["action_plan"].(string); ok {
		result.ActionPlan = &plan
	}
	if imageURL, ok := fields["image_url"].(string); ok {
		result.ImageURL = &imageURL
	}
	return result
}
