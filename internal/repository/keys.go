package repository

import (
	"encoding/json"
	"fmt"

	"github.com/dreamtrack/dreamtrack/internal/model"
)

const (
	DocTypeDream    = "dream"
	DocTypeTemplate = "template"
	DocTypeWeek     = "week"
	DocTypeArchive  = "archive"
	DocTypeConnect  = "connect"
)

func DreamKey(dreamID string) string     { return "dream:" + dreamID }
func TemplateKey(goalID string) string   { return "template:" + goalID }
func WeekKey(weekID string) string       { return "week:" + weekID }
func ArchiveKey(weekID string) string    { return "archive:" + weekID }
func ConnectKey(connectID string) string { return "connect:" + connectID }

// Document builders used by services that compose atomic batches
// (dual writes, rollover commits) across repository boundaries.

func DreamDoc(d *model.Dream) (Document, error) {
	return marshalDoc(DreamKey(d.ID), DocTypeDream, d)
}

func TemplateDoc(t *model.WeekTemplate) (Document, error) {
	return marshalDoc(TemplateKey(t.ID), DocTypeTemplate, t)
}

func WeekDoc(w *model.WeekDocument) (Document, error) {
	return marshalDoc(WeekKey(w.WeekID), DocTypeWeek, w)
}

func ArchiveDoc(a *model.PastWeekArchive) (Document, error) {
	return marshalDoc(ArchiveKey(a.WeekID), DocTypeArchive, a)
}

func ConnectDoc(c *model.Connect) (Document, error) {
	return marshalDoc(ConnectKey(c.ID), DocTypeConnect, c)
}

func marshalDoc(key, docType string, v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Document{}, fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return Document{Key: key, Type: docType, Data: data}, nil
}
