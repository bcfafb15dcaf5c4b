package repository

import (
	"time"

	"jobtrack/internal/document"
	"jobtrack/internal/domain"
)

// WorkflowDocument is a typed view over a raw workflow document.
type WorkflowDocument struct {
	doc *document.Document
}

func NewWorkflowDocument(doc *document.Document) *WorkflowDocument {
	if doc == nil {
		doc = document.New()
	}
	return &WorkflowDocument{doc: doc}
}

func (d *WorkflowDocument) Document() *document.Document { return d.doc }

func (d *WorkflowDocument) ID() string {
	id, _ := d.doc.GetString(pathID)
	return id
}

func (d *WorkflowDocument) Name() *string {
	name, ok := d.doc.GetString(pathName)
	if !ok {
		return nil
	}
	return &name
}

func (d *WorkflowDocument) SetID(id string)          { d.doc.SetString(pathID, id) }
func (d *WorkflowDocument) SetName(name *string)     { d.doc.SetOptionalString(pathName, name) }
func (d *WorkflowDocument) SetUpdatedAt(t time.Time) { d.doc.SetString(pathUpdatedAt, formatTime(t)) }

// Mutate writes an arbitrary value at path.
func (d *WorkflowDocument) Mutate(path []string, value any) {
	d.doc.SetIn(path, value)
}

func (d *WorkflowDocument) ToWorkflow() (domain.Workflow, error) {
	var s workflowSchema
	if err := document.Materialize(d.doc, &s); err != nil {
		return domain.Workflow{}, err
	}
	return s.toDomain(), nil
}
