package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// ContractorProfile represents the registered details of a contractor
type ContractorProfile struct {
	YojID             string            `json:"yojId"`
	FirmName          string            `json:"firmName"`
	ProprietorName    string            `json:"proprietorName"`
	Designation       string            `json:"designation,omitempty"`
	Address           string            `json:"address"`
	City              string            `json:"city,omitempty"`
	State             string            `json:"state,omitempty"`
	Pincode           string            `json:"pincode,omitempty"`
	Phone             string            `json:"phone,omitempty"`
	Email             string            `json:"email,omitempty"`
	GSTIN             string            `json:"gstin,omitempty"`
	PAN               string            `json:"pan,omitempty"`
	RegistrationNo    string            `json:"registrationNo,omitempty"`
	RegistrationClass string            `json:"registrationClass,omitempty"`
	BankName          string            `json:"bankName,omitempty"`
	BankAccountNo     string            `json:"bankAccountNo,omitempty"`
	BankIFSC          string            `json:"bankIfsc,omitempty"`
	LetterheadHTML    string            `json:"letterheadHtml,omitempty"`
	Custom            map[string]string `json:"custom,omitempty"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Value implements driver.Valuer for JSONB
func (c ContractorProfile) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB
func (c *ContractorProfile) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, c)
}

// Fields flattens the profile into contractor.* placeholder values.
// Custom entries without a namespace are placed under contractor.
func (c ContractorProfile) Fields() map[string]string {
	out := map[string]string{
		"contractor.firmName":          c.FirmName,
		"contractor.proprietorName":    c.ProprietorName,
		"contractor.designation":       c.Designation,
		"contractor.address":           c.Address,
		"contractor.city":              c.City,
		"contractor.state":             c.State,
		"contractor.pincode":           c.Pincode,
		"contractor.phone":             c.Phone,
		"contractor.email":             c.Email,
		"contractor.gstin":             c.GSTIN,
		"contractor.pan":               c.PAN,
		"contractor.registrationNo":    c.RegistrationNo,
		"contractor.registrationClass": c.RegistrationClass,
		"bank.name":                    c.BankName,
		"bank.accountNo":               c.BankAccountNo,
		"bank.ifsc":                    c.BankIFSC,
	}
	for k, v := range c.Custom {
		if !strings.Contains(k, ".") {
			k = "contractor." + k
		}
		out[k] = v
	}
	return out
}

// FieldValues is a flat placeholder key to value map
type FieldValues map[string]string

// Value implements driver.Valuer for JSONB
func (f FieldValues) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(f))
}

// Scan implements sql.Scanner for JSONB
func (f *FieldValues) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	if len(bytes) == 0 {
		*f = FieldValues{}
		return nil
	}
	return json.Unmarshal(bytes, (*map[string]string)(f))
}

// ProfileMemory holds fields a contractor saved once for reuse
type ProfileMemory struct {
	YojID     string      `json:"yojId"`
	Fields    FieldValues `json:"fields"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
