// Package importer turns contact spreadsheets into bulk-import payloads.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"voice-console/pkg/models"
)

var ErrMissingColumns = errors.New("importer: csv header must contain name and phone columns")

// Result is the outcome of parsing one file.
type Result struct {
	Contacts []models.ContactInput `json:"contacts"`
	// Skipped counts data rows dropped for lacking a name or phone.
	Skipped int `json:"skipped"`
}

// ParseCSV reads a headed CSV. Columns are matched by name, case-insensitively;
// blank lines are ignored, and rows whose trimmed name or phone is empty are
// dropped. tenantID and listID are stamped on every contact when set.
func ParseCSV(r io.Reader, tenantID, listID string) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return &Result{Contacts: []models.ContactInput{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	nameCol, phoneCol := -1, -1
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name":
			nameCol = i
		case "phone":
			phoneCol = i
		}
	}
	if nameCol < 0 || phoneCol < 0 {
		return nil, ErrMissingColumns
	}

	res := &Result{Contacts: []models.ContactInput{}}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if blank(rec) {
			continue
		}
		name, phone := field(rec, nameCol), field(rec, phoneCol)
		if name == "" || phone == "" {
			res.Skipped++
			continue
		}
		res.Contacts = append(res.Contacts, models.ContactInput{Name: name, Phone: phone, TenantID: tenantID, ListID: listID})
	}
	return res, nil
}

// WriteCSV writes contacts with a header row.
func WriteCSV(w io.Writer, contacts []models.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "phone", "status", "retries"}); err != nil {
		return err
	}
	for _, c := range contacts {
		if err := cw.Write([]string{c.Name, c.Phone, string(c.Status), strconv.Itoa(c.Retries)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
