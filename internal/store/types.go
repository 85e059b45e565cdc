package store

import (
	"fmt"
	"strings"
	"time"
)

// Identity is a Telegram user as the store sees it.
type Identity struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// DisplayName joins first and last name, falling back to the username.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	switch {
	case name != "":
		return name
	case i.Username != "":
		return "@" + i.Username
	}
	return fmt.Sprintf("user %d", i.ID)
}

// Operator may create, edit and delete reports. Super operators also manage operators.
type Operator struct {
	ID        int64     `db:"id" yaml:"id"`
	FirstName string    `db:"first_name" yaml:"first_name"`
	LastName  string    `db:"last_name" yaml:"last_name"`
	Username  string    `db:"username" yaml:"username"`
	Super     bool      `db:"is_super" yaml:"super"`
	CreatedAt time.Time `db:"created_at" yaml:"created_at"`
}

// Reporter is anyone who forwarded a report or confirmed one.
type Reporter struct {
	ID        int64     `db:"id" yaml:"id"`
	FirstName string    `db:"first_name" yaml:"first_name"`
	LastName  string    `db:"last_name" yaml:"last_name"`
	Username  string    `db:"username" yaml:"username"`
	CreatedAt time.Time `db:"created_at" yaml:"created_at"`
}

// Report describes a trade counterparty. Nil text fields were never set.
type Report struct {
	ID            int64     `db:"id" yaml:"id"`
	CreatedAt     time.Time `db:"created_at" yaml:"created_at"`
	Phone         *string   `db:"phone" yaml:"phone"`
	ExternalID    *string   `db:"external_id" yaml:"external_id"`
	BankOwner     *string   `db:"bank_owner" yaml:"bank_owner"`
	Remark        *string   `db:"remark" yaml:"remark"`
	Attachment    *string   `db:"attachment" yaml:"attachment"`
	CreatedBy     *int64    `db:"created_by" yaml:"created_by"`
	ReportedBy    *int64    `db:"reported_by" yaml:"reported_by"`
	Confirmations int       `db:"confirmations" yaml:"-"`
}

// HasAttachment reports whether a non-empty attachment is stored.
func (r Report) HasAttachment() bool {
	return r.Attachment != nil && *r.Attachment != ""
}

// Field names an editable report column.
type Field string

const (
	FieldExternalID Field = "external_id"
	FieldBankOwner  Field = "bank_owner"
	FieldPhone      Field = "phone"
	FieldRemark     Field = "remark"
	FieldAttachment Field = "attachment"
)

// Fields lists editable fields in display order.
var Fields = []Field{FieldExternalID, FieldBankOwner, FieldPhone, FieldRemark, FieldAttachment}

var fieldLabels = map[Field]string{
	FieldExternalID: "External ID",
	FieldBankOwner:  "Bank account owner",
	FieldPhone:      "Phone number",
	FieldRemark:     "Remark",
	FieldAttachment: "Attachment",
}

// Label is the human readable field name shown on keyboards and in reports.
func (f Field) Label() string {
	return fieldLabels[f]
}

// FieldByLabel is the inverse of Label.
func FieldByLabel(label string) (Field, bool) {
	for f, l := range fieldLabels {
		if l == label {
			return f, true
		}
	}
	return "", false
}

// column maps a field to its column; unknown fields are rejected so the
// name can be interpolated into SQL.
func (f Field) column() (string, error) {
	switch f {
	case FieldExternalID, FieldBankOwner, FieldPhone, FieldRemark, FieldAttachment:
		return string(f), nil
	}
	return "", fmt.Errorf("store: unknown field %q", string(f))
}

// AttachmentKind is the media type of a stored attachment.
type AttachmentKind string

const (
	AttachmentPhoto    AttachmentKind = "photo"
	AttachmentDocument AttachmentKind = "document"
)

// FormatAttachment encodes an attachment reference as "<kind>:<reference>".
func FormatAttachment(kind AttachmentKind, ref string) string {
	return string(kind) + ":" + ref
}

// ParseAttachment splits a stored attachment into kind and reference.
func ParseAttachment(s string) (AttachmentKind, string, error) {
	kind, ref, ok := strings.Cut(s, ":")
	if !ok || ref == "" {
		return "", "", fmt.Errorf("store: malformed attachment %q", s)
	}
	switch k := AttachmentKind(kind); k {
	case AttachmentPhoto, AttachmentDocument:
		return k, ref, nil
	}
	return "", "", fmt.Errorf("store: unknown attachment kind %q", kind)
}

// RemoveResult is the outcome of RemoveOperator.
type RemoveResult int

const (
	OperatorRemoved RemoveResult = iota
	OperatorProtected
	OperatorNotFound
)

// Toggle is the outcome of ToggleConfirmation.
type Toggle struct {
	// Confirmed is the membership after the toggle.
	Confirmed bool
	// NewReporter is set when the reporter row was created by this call.
	NewReporter bool
}
