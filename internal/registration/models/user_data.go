package models

import (
	"encoding/json"
	"net/mail"
	"strings"
	"time"

	dErrors "enroll/pkg/domain-errors"
)

// Segment selects which business fields the host form shows.
type Segment string

const (
	SegmentCustomers  Segment = "clientes"
	SegmentSalesForce Segment = "fuerza_de_ventas"
)

// MinimumAge is enforced on BirthDate when it is supplied.
const MinimumAge = 18

// BirthDateLayout is the wire layout of BirthDate.
const BirthDateLayout = "2006-01-02"

// UserData holds the registration form fields. JSON names follow the host
// form field names the backend expects.
type UserData struct {
	Document     string  `json:"document"`
	DocumentType string  `json:"DocumentType,omitempty"`
	Mail         string  `json:"mail"`
	ConfirmMail  string  `json:"confirmMail,omitempty"`
	CellPhone    string  `json:"cellPhone"`
	Names        string  `json:"names"`
	BusinessName string  `json:"BusinessName,omitempty"`
	Address      string  `json:"Address,omitempty"`
	Gender       string  `json:"Gender,omitempty"`
	Segment      Segment `json:"segmentoR,omitempty"`
	Personalize1 string  `json:"Personalize1,omitempty"`
	BirthDate    string  `json:"BirthDate,omitempty"`
	// Extra holds host form fields without a named field. They are
	// forwarded to the backend as-is.
	Extra map[string]string `json:"-"`
}

var namedFormKeys = map[string]bool{
	"document": true, "documenttype": true, "mail": true, "confirmmail": true,
	"cellphone": true, "names": true, "businessname": true, "address": true,
	"gender": true, "segmentor": true, "personalize1": true, "birthdate": true,
}

// UnmarshalJSON decodes the named fields and collects any other string-valued
// keys into Extra. Non-string extras are dropped.
func (u *UserData) UnmarshalJSON(b []byte) error {
	type plain UserData
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Extra = nil
	for k, v := range raw {
		if namedFormKeys[strings.ToLower(k)] {
			continue
		}
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]string)
		}
		p.Extra[k] = str
	}
	*u = UserData(p)
	return nil
}

// Normalize trims whitespace from every field.
func (u *UserData) Normalize() {
	u.Document = strings.TrimSpace(u.Document)
	u.DocumentType = strings.TrimSpace(u.DocumentType)
	u.Mail = strings.TrimSpace(u.Mail)
	u.ConfirmMail = strings.TrimSpace(u.ConfirmMail)
	u.CellPhone = strings.TrimSpace(u.CellPhone)
	u.Names = strings.TrimSpace(u.Names)
	u.BusinessName = strings.TrimSpace(u.BusinessName)
	u.Address = strings.TrimSpace(u.Address)
	u.Gender = strings.TrimSpace(u.Gender)
	u.BirthDate = strings.TrimSpace(u.BirthDate)
}

// Validate is the client-visible form check run before any request is sent:
// required fields, mail confirmation, segment-specific fields and minimum age.
func (u *UserData) Validate(now time.Time) error {
	switch {
	case u.Document == "":
		return dErrors.New(dErrors.CodeValidation, "document is required")
	case u.Mail == "":
		return dErrors.New(dErrors.CodeValidation, "mail is required")
	case u.CellPhone == "":
		return dErrors.New(dErrors.CodeValidation, "cellPhone is required")
	case u.Names == "":
		return dErrors.New(dErrors.CodeValidation, "names is required")
	}
	if _, err := mail.ParseAddress(u.Mail); err != nil {
		return dErrors.New(dErrors.CodeValidation, "mail is not a valid address")
	}
	if !strings.EqualFold(u.ConfirmMail, u.Mail) {
		return dErrors.New(dErrors.CodeValidation, "confirmMail does not match mail")
	}
	if u.Segment != "" && u.Segment != SegmentCustomers && u.Segment != SegmentSalesForce {
		return dErrors.New(dErrors.CodeValidation, "unknown segment")
	}
	if u.Segment == SegmentCustomers {
		if u.BusinessName == "" {
			return dErrors.New(dErrors.CodeValidation, "BusinessName is required for customers")
		}
		if u.Address == "" {
			return dErrors.New(dErrors.CodeValidation, "Address is required for customers")
		}
	}
	if u.BirthDate != "" {
		born, err := time.Parse(BirthDateLayout, u.BirthDate)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "BirthDate must be YYYY-MM-DD")
		}
		if born.After(adultCutoff(now)) {
			return dErrors.New(dErrors.CodeValidation, "must be at least 18 years old")
		}
	}
	return nil
}

// adultCutoff is the latest birth date that is MinimumAge years old at now.
// On Feb 29 the cutoff is Feb 28 when the target year has no leap day;
// time.Date would otherwise normalize it to Mar 1.
func adultCutoff(now time.Time) time.Time {
	y, m, d := now.Date()
	y -= MinimumAge
	if m == time.February && d == 29 && !isLeap(y) {
		d = 28
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// Fields flattens the form into the key/value set the backend receives.
// Business fields are omitted for the sales force segment, whose form
// disables them.
func (u *UserData) Fields() map[string]string {
	out := make(map[string]string, len(u.Extra)+12)
	for k, v := range u.Extra {
		out[k] = v
	}
	put := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	put("document", u.Document)
	put("DocumentType", u.DocumentType)
	put("mail", u.Mail)
	put("confirmMail", u.ConfirmMail)
	put("cellPhone", u.CellPhone)
	put("names", u.Names)
	put("Gender", u.Gender)
	put("segmentoR", string(u.Segment))
	put("Personalize1", u.Personalize1)
	put("BirthDate", u.BirthDate)
	if u.Segment != SegmentSalesForce {
		put("BusinessName", u.BusinessName)
		put("Address", u.Address)
	}
	return out
}
