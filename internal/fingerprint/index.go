package fingerprint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DigestTags associates one content digest with the ordered list of tags
// whose checkout produced that exact content for the entry's path.
type DigestTags struct {
	Digest string
	Tags   []string
}

// FileEntry is one indexed path together with every digest it has taken
// across the tag history. Digests keep first-seen order: the detector's
// skip heuristic treats the first digest as the entry's representative.
type FileEntry struct {
	Path    string
	Digests []DigestTags
}

// Index is the ordered sequence of file entries. After ranking, the order is
// the probe order and must survive serialization round trips untouched.
type Index []FileEntry

// AddTag records that tag produced digest for this entry's path. A tag is
// expected at most once per entry across all digests; the indexer guarantees
// that by hashing each path once per checkout.
func (e *FileEntry) AddTag(digest, tag string) {
	for i := range e.Digests {
		if e.Digests[i].Digest == digest {
			e.Digests[i].Tags = append(e.Digests[i].Tags, tag)
			return
		}
	}
	e.Digests = append(e.Digests, DigestTags{Digest: digest, Tags: []string{tag}})
}

// Lookup returns the tag list recorded for digest, if any.
func (e *FileEntry) Lookup(digest string) ([]string, bool) {
	for i := range e.Digests {
		if e.Digests[i].Digest == digest {
			return e.Digests[i].Tags, true
		}
	}
	return nil, false
}

// MarshalJSON emits the entry as a two-element array: the path followed by an
// object mapping digests to tag lists. Object keys are written in digest
// insertion order, which encoding/json maps cannot guarantee.
func (e FileEntry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	path, err := json.Marshal(e.Path)
	if err != nil {
		return nil, err
	}
	buf.Write(path)

	buf.WriteString(", {")
	for i, dt := range e.Digests {
		if i > 0 {
			buf.WriteString(", ")
		}
		digest, err := json.Marshal(dt.Digest)
		if err != nil {
			return nil, err
		}
		buf.Write(digest)
		buf.WriteString(": ")

		tags := dt.Tags
		if tags == nil {
			tags = []string{}
		}
		tagList, err := json.Marshal(tags)
		if err != nil {
			return nil, err
		}
		buf.Write(tagList)
	}
	buf.WriteString("}]")

	return buf.Bytes(), nil
}

// UnmarshalJSON parses the [path, {digest: [tag, ...]}] pair, preserving the
// digest key order of the document.
func (e *FileEntry) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '['); err != nil {
		return fmt.Errorf("index entry: %w", err)
	}

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	path, ok := tok.(string)
	if !ok {
		return fmt.Errorf("index entry: expected path string, got %v", tok)
	}
	e.Path = path

	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("index entry %q: %w", path, err)
	}

	e.Digests = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		digest, ok := tok.(string)
		if !ok {
			return fmt.Errorf("index entry %q: expected digest key, got %v", path, tok)
		}

		var tags []string
		if err := dec.Decode(&tags); err != nil {
			return fmt.Errorf("index entry %q: digest %q: %w", path, digest, err)
		}
		e.Digests = append(e.Digests, DigestTags{Digest: digest, Tags: tags})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return fmt.Errorf("index entry %q: %w", path, err)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return fmt.Errorf("index entry %q: %w", path, err)
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want.String(), tok)
	}
	return nil
}

// LoadIndex deserializes a ranked index, keeping the array order as probe order.
func LoadIndex(r io.Reader) (Index, error) {
	var index Index
	if err := json.NewDecoder(r).Decode(&index); err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}
	return index, nil
}

// Marshal serializes the index in its current order.
func (idx Index) Marshal() ([]byte, error) {
	if idx == nil {
		idx = Index{}
	}
	return json.Marshal(idx)
}
