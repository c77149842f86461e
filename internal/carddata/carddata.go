// Package carddata is the codec for the contact text grammar, built on
// the vCard line format. Encoding applies field directives over the
// parsed original so unmodeled lines survive re-serialization.
package carddata

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/anhofer/libgroupdav/record"
	"github.com/emersion/go-vcard"
	"github.com/samber/mo"
)

// DecodeContact lifts a stored vCard into its typed field view.
func DecodeContact(data string) (*record.Contact, error) {
	card, err := vcard.NewDecoder(strings.NewReader(data)).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to parse vCard data: %w", err)
	}
	return contactFromCard(card), nil
}

func contactFromCard(card vcard.Card) *record.Contact {
	contact := &record.Contact{
		UID:           card.Value("UID"),
		FormattedName: card.Value("FN"),
		Title:         card.Value("TITLE"),
		Birthday:      card.Value("BDAY"),
		URL:           card.Value("URL"),
		Note:          card.Value("NOTE"),
	}

	// ORG is structured (organization;unit); the organization itself is
	// the first segment.
	if org := card.Value("ORG"); org != "" {
		contact.Organization = strings.SplitN(org, ";", 2)[0]
	}

	if f := card.Get("N"); f != nil {
		name := parseName(f.Value)
		contact.Name = &name
	}
	if f := card.Get("ADR"); f != nil {
		addr := parseAddress(f.Value)
		contact.Address = &addr
	}

	for _, f := range card["EMAIL"] {
		contact.Emails = append(contact.Emails, typedValue(f))
	}
	for _, f := range card["TEL"] {
		contact.Phones = append(contact.Phones, typedValue(f))
	}

	return contact
}

func typedValue(f *vcard.Field) record.TypedValue {
	v := record.TypedValue{Value: f.Value}
	if f.Params != nil {
		v.Type = f.Params.Get("TYPE")
	}
	return v
}

// EncodeContact applies the patch over the original representation and
// re-encodes it. An empty original starts a fresh card carrying the given
// identifier. The structured name line is always present in the output;
// even a display-name-only contact carries a syntactically complete,
// empty N line.
func EncodeContact(original, uid string, patch record.ContactPatch) (string, error) {
	var card vcard.Card
	if original == "" {
		card = make(vcard.Card)
		card["VERSION"] = []*vcard.Field{{Value: "3.0"}}
		card["UID"] = []*vcard.Field{{Value: uid}}
	} else {
		var err error
		card, err = vcard.NewDecoder(strings.NewReader(original)).Decode()
		if err != nil {
			return "", fmt.Errorf("failed to parse vCard data: %w", err)
		}
	}

	applyValue(card, "FN", patch.FormattedName)
	applyValue(card, "ORG", patch.Organization)
	applyValue(card, "TITLE", patch.Title)
	applyValue(card, "BDAY", patch.Birthday)
	applyValue(card, "URL", patch.URL)
	applyValue(card, "NOTE", patch.Note)

	if patch.Name != nil {
		if n, ok := patch.Name.Get(); ok {
			card["N"] = []*vcard.Field{{Value: formatName(n)}}
		} else {
			delete(card, "N")
		}
	}
	if patch.Address != nil {
		if a, ok := patch.Address.Get(); ok {
			card["ADR"] = []*vcard.Field{{Value: formatAddress(a)}}
		} else {
			delete(card, "ADR")
		}
	}
	applyTyped(card, "EMAIL", patch.Emails)
	applyTyped(card, "TEL", patch.Phones)

	// The grammar requires a structured name line even when no name parts
	// are known.
	if card.Get("N") == nil {
		card["N"] = []*vcard.Field{{Value: ";;;;"}}
	}

	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
		return "", fmt.Errorf("failed to encode vCard: %w", err)
	}
	return buf.String(), nil
}

func applyValue(card vcard.Card, key string, d *mo.Option[string]) {
	if d == nil {
		return
	}
	if v, ok := d.Get(); ok {
		if fields := card[key]; len(fields) > 0 {
			fields[0].Value = v
			card[key] = fields[:1]
		} else {
			card[key] = []*vcard.Field{{Value: v}}
		}
	} else {
		delete(card, key)
	}
}

func applyTyped(card vcard.Card, key string, d *mo.Option[[]record.TypedValue]) {
	if d == nil {
		return
	}
	delete(card, key)
	list, ok := d.Get()
	if !ok {
		return
	}
	for _, v := range list {
		f := &vcard.Field{Value: v.Value}
		if v.Type != "" {
			f.Params = vcard.Params{"TYPE": {v.Type}}
		}
		card[key] = append(card[key], f)
	}
}

// N is Family;Given;Additional;Prefix;Suffix.

func parseName(v string) record.Name {
	parts := splitStructured(v, 5)
	return record.Name{
		Family:     parts[0],
		Given:      parts[1],
		Additional: parts[2],
		Prefix:     parts[3],
		Suffix:     parts[4],
	}
}

func formatName(n record.Name) string {
	return strings.Join([]string{n.Family, n.Given, n.Additional, n.Prefix, n.Suffix}, ";")
}

// ADR is POBox;Extended;Street;Locality;Region;PostalCode;Country.

func parseAddress(v string) record.Address {
	parts := splitStructured(v, 7)
	return record.Address{
		PostOfficeBox: parts[0],
		Extended:      parts[1],
		Street:        parts[2],
		Locality:      parts[3],
		Region:        parts[4],
		PostalCode:    parts[5],
		Country:       parts[6],
	}
}

func formatAddress(a record.Address) string {
	return strings.Join([]string{
		a.PostOfficeBox, a.Extended, a.Street, a.Locality, a.Region, a.PostalCode, a.Country,
	}, ";")
}

func splitStructured(v string, n int) []string {
	parts := strings.Split(v, ";")
	for len(parts) < n {
		parts = append(parts, "")
	}
	return parts[:n]
}
