package repository

import (
	"fmt"
	"time"

	"jobtrack/internal/document"
	"jobtrack/internal/domain"
)

var (
	pathID         = []string{"id"}
	pathStatus     = []string{"status"}
	pathWorkflowID = []string{"workflowId"}
	pathCreatedAt  = []string{"createdAt"}
	pathAck        = []string{"ack"}
	pathName       = []string{"name"}
	pathUpdatedAt  = []string{"updatedAt"}
)

// JobDocument is a typed view over a raw job document. Setters accept
// partial content; ToJob validates the whole document.
type JobDocument struct {
	doc *document.Document
}

func NewJobDocument(doc *document.Document) *JobDocument {
	if doc == nil {
		doc = document.New()
	}
	return &JobDocument{doc: doc}
}

func (d *JobDocument) Document() *document.Document { return d.doc }

func (d *JobDocument) ID() (string, error) { return d.required(pathID) }

func (d *JobDocument) WorkflowID() (string, error) { return d.required(pathWorkflowID) }

func (d *JobDocument) Status() (domain.JobStatus, error) {
	s, err := d.required(pathStatus)
	if err != nil {
		return "", err
	}
	return domain.ParseJobStatus(s)
}

// Ack returns nil when the job was never claimed.
func (d *JobDocument) Ack() (*time.Time, error) {
	s, ok := d.doc.GetString(pathAck)
	if !ok {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return nil, fmt.Errorf("job document: ack: %w", err)
	}
	return &t, nil
}

func (d *JobDocument) SetID(id string)                   { d.doc.SetString(pathID, id) }
func (d *JobDocument) SetWorkflowID(id string)           { d.doc.SetString(pathWorkflowID, id) }
func (d *JobDocument) SetStatus(status domain.JobStatus) { d.doc.SetString(pathStatus, string(status)) }
func (d *JobDocument) SetCreatedAt(t time.Time)          { d.doc.SetString(pathCreatedAt, formatTime(t)) }

func (d *JobDocument) SetAck(t *time.Time) {
	if t == nil {
		d.doc.SetOptionalString(pathAck, nil)
		return
	}
	s := formatTime(*t)
	d.doc.SetOptionalString(pathAck, &s)
}

// Apply copies every field of job into the document.
func (d *JobDocument) Apply(job domain.Job) {
	d.SetID(job.ID)
	d.SetStatus(job.Status)
	d.SetWorkflowID(job.WorkflowID)
	d.SetCreatedAt(job.CreatedAt)
	d.SetAck(job.Ack)
}

// ToJob materializes and validates the document.
func (d *JobDocument) ToJob() (domain.Job, error) {
	var s jobSchema
	if err := document.Materialize(d.doc, &s); err != nil {
		return domain.Job{}, err
	}
	return s.toDomain(), nil
}

func (d *JobDocument) required(path []string) (string, error) {
	s, ok := d.doc.GetString(path)
	if !ok {
		return "", fmt.Errorf("job document: %s is undefined", path[0])
	}
	return s, nil
}
