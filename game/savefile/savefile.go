package savefile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/wricardo/property-game/game/engine"
)

var (
	// ErrMalformed is wrapped by every decode failure
	ErrMalformed = errors.New("malformed save file")
	// ErrInvalidName is returned when a value cannot be written without
	// breaking the record layout
	ErrInvalidName = errors.New("invalid name")
)

const (
	keyBank    = "BANK"
	keyOrder   = "ORDER"
	keyPointer = "POINTER"

	recPlayer   = "PLAYER"
	recProperty = "PROP"
	recCard     = "CARD"

	header = "# property-game save"
)

// Well-known metadata keys written by the session layer
const (
	MetaSession  = "SESSION"
	MetaRules    = "RULES"
	MetaCreated  = "CREATED"
	MetaAccessed = "ACCESSED"
)

// File is a decoded save file
type File struct {
	Meta     map[string]string
	Snapshot *engine.Snapshot
}

// Encode writes f to w
func Encode(w io.Writer, f *File) error {
	if f == nil || f.Snapshot == nil {
		return errors.New("nothing to encode")
	}
	s := f.Snapshot

	var b strings.Builder
	b.WriteString(header + "\n")

	keys := make([]string, 0, len(f.Meta))
	for k := range f.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := f.Meta[k]
		if err := checkMeta(k, v); err != nil {
			return err
		}
		fmt.Fprintf(&b, "%s=%s\n", k, v)
	}

	fmt.Fprintf(&b, "%s=%d\n", keyBank, s.BankBalance)
	fmt.Fprintf(&b, "%s=%s\n", keyOrder, joinInts(s.TurnOrder))
	fmt.Fprintf(&b, "%s=%d\n", keyPointer, s.TurnPointer)

	for _, p := range s.Players {
		if !validField(p.Name) {
			return fmt.Errorf("%w: player %q", ErrInvalidName, p.Name)
		}
		fmt.Fprintf(&b, "%s|%s|%d|%d|%s|%s|%d|%d\n", recPlayer,
			p.Name, p.Balance, p.Position, flag(p.InJail), flag(p.Bankrupt), p.ReleaseCards, p.Color)
	}
	for _, p := range s.Properties {
		fmt.Fprintf(&b, "%s|%d|%d|%d|%s\n", recProperty, p.Position, p.Owner, p.Houses, flag(p.Hotel))
	}
	for _, c := range s.Deck {
		fmt.Fprintf(&b, "%s|%s|%d|%d\n", recCard, c.Kind, c.Value, c.DisplayID)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Marshal encodes f into a byte slice
func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a save file from r. A file without CARD records gets the
// standard deck; a file without BANK gets the opening bank balance.
func Decode(r io.Reader) (*File, error) {
	f := &File{
		Meta:     map[string]string{},
		Snapshot: &engine.Snapshot{BankBalance: engine.BankBalance},
	}
	s := f.Snapshot

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if fields := strings.Split(text, "|"); len(fields) > 1 {
			var err error
			switch fields[0] {
			case recPlayer:
				err = decodePlayer(s, fields[1:])
			case recProperty:
				err = decodeProperty(s, fields[1:])
			case recCard:
				err = decodeCard(s, fields[1:])
			}
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
			}
			continue
		}

		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		var err error
		switch key {
		case keyBank:
			s.BankBalance, err = strconv.Atoi(value)
		case keyPointer:
			s.TurnPointer, err = strconv.Atoi(value)
		case keyOrder:
			s.TurnOrder, err = splitInts(value)
		default:
			f.Meta[key] = value
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", ErrMalformed, line, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read save file: %w", err)
	}

	if len(s.Deck) == 0 {
		s.Deck = engine.StandardDeck()
	}
	return f, nil
}

// Unmarshal decodes a save file held in memory
func Unmarshal(data []byte) (*File, error) {
	return Decode(bytes.NewReader(data))
}

func decodePlayer(s *engine.Snapshot, fields []string) error {
	p := engine.PlayerSnapshot{
		Name:    fields[0],
		Balance: engine.StartingBalance,
		Color:   len(s.Players),
	}
	r := fieldReader{fields: fields, next: 1}
	r.readInt(&p.Balance, "balance")
	r.readInt(&p.Position, "position")
	r.readBool(&p.InJail, "in jail")
	r.readBool(&p.Bankrupt, "bankrupt")
	r.readInt(&p.ReleaseCards, "release cards")
	r.readInt(&p.Color, "color")
	if r.err != nil {
		return r.err
	}
	s.Players = append(s.Players, p)
	return nil
}

func decodeProperty(s *engine.Snapshot, fields []string) error {
	p := engine.PropertySnapshot{Owner: -1}
	r := fieldReader{fields: fields}
	r.readInt(&p.Position, "position")
	r.readInt(&p.Owner, "owner")
	r.readInt(&p.Houses, "houses")
	r.readBool(&p.Hotel, "hotel")
	if r.err != nil {
		return r.err
	}
	s.Properties = append(s.Properties, p)
	return nil
}

func decodeCard(s *engine.Snapshot, fields []string) error {
	c := engine.Card{Kind: engine.CardKind(fields[0])}
	r := fieldReader{fields: fields, next: 1}
	r.readInt(&c.Value, "value")
	r.readInt(&c.DisplayID, "display id")
	if r.err != nil {
		return r.err
	}
	s.Deck = append(s.Deck, c)
	return nil
}

// fieldReader consumes positional fields, leaving defaults in place for
// fields that are missing or empty
type fieldReader struct {
	fields []string
	next   int
	err    error
}

func (r *fieldReader) take() (string, bool) {
	if r.err != nil || r.next >= len(r.fields) {
		return "", false
	}
	v := strings.TrimSpace(r.fields[r.next])
	r.next++
	return v, v != ""
}

func (r *fieldReader) readInt(dst *int, name string) {
	v, ok := r.take()
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = fmt.Errorf("%s %q is not an integer", name, v)
		return
	}
	*dst = n
}

func (r *fieldReader) readBool(dst *bool, name string) {
	v, ok := r.take()
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.err = fmt.Errorf("%s %q is not a flag", name, v)
		return
	}
	*dst = b
}

func checkMeta(key, value string) error {
	switch {
	case key == "" || strings.ContainsAny(key, "=|#") || !validField(key):
		return fmt.Errorf("%w: metadata key %q", ErrInvalidName, key)
	case key == keyBank || key == keyOrder || key == keyPointer:
		return fmt.Errorf("%w: metadata key %q is reserved", ErrInvalidName, key)
	case strings.ContainsAny(value, "\r\n|"):
		return fmt.Errorf("%w: metadata value for %s", ErrInvalidName, key)
	}
	return nil
}

func validField(s string) bool {
	return !strings.ContainsAny(s, "|\r\n")
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
