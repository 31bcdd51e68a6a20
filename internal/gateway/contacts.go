package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"voice-console/pkg/models"
)

// Contacts lists contacts, restricted to one list when listID is set.
func (s *Scoped) Contacts(ctx context.Context, listID string) ([]models.Contact, error) {
	path := "/contacts"
	if listID != "" {
		path += "?" + url.Values{"list_id": {listID}}.Encode()
	}
	raw, err := s.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return DecodeCollection[models.Contact](raw, "contacts"), nil
}

func (s *Scoped) CreateContact(ctx context.Context, in models.ContactInput) (*models.Contact, error) {
	raw, err := s.send(ctx, http.MethodPost, "/contacts", in)
	if err != nil {
		return nil, err
	}
	c, err := DecodeObject[models.Contact](raw, "contact")
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Scoped) BulkCreateContacts(ctx context.Context, contacts []models.ContactInput) (json.RawMessage, error) {
	return s.send(ctx, http.MethodPost, "/contacts/bulk", map[string]any{"contacts": contacts})
}

// ImportExcel forwards a spreadsheet as the multipart "file" field.
func (s *Scoped) ImportExcel(ctx context.Context, filename string, content io.Reader) (json.RawMessage, error) {
	return s.upload(ctx, "/contacts/import/excel", "file", filename, content)
}

func (s *Scoped) ContactLists(ctx context.Context) ([]models.ContactList, error) {
	raw, err := s.get(ctx, "/contacts/lists")
	if err != nil {
		return nil, err
	}
	return DecodeCollection[models.ContactList](raw, "lists"), nil
}

func (s *Scoped) CreateContactList(ctx context.Context, req models.CreateContactListRequest) (*models.ContactList, error) {
	raw, err := s.send(ctx, http.MethodPost, "/contacts/lists", req)
	if err != nil {
		return nil, err
	}
	l, err := DecodeObject[models.ContactList](raw, "list")
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Scoped) ContactList(ctx context.Context, id string) (*models.ContactList, error) {
	raw, err := s.get(ctx, "/contacts/lists/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	l, err := DecodeObject[models.ContactList](raw, "list")
	if err != nil {
		return nil, err
	}
	return &l, nil
}
