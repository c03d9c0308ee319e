package models

// Signature is a guestbook-style entry with a required name and an optional
// message.
type Signature struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Message *string `json:"message"`
}

func (s Signature) Clone() Signature {
	if s.Message != nil {
		msg := *s.Message
		s.Message = &msg
	}
	return s
}

type NewSignature struct {
	Name    string  `json:"name" binding:"required"`
	Message *string `json:"message"`
}

func (n NewSignature) Validate() error {
	if n.Name == "" {
		return &ValidationError{Field: "name", Reason: "a string value for name is required"}
	}
	return nil
}

// SignaturePatch carries the fields of a partial signature update.
type SignaturePatch struct {
	Name    Field[string]  `json:"name"`
	Message Field[*string] `json:"message"`
}

func (p SignaturePatch) Validate() error {
	if p.Name.Set && p.Name.Value == "" {
		return &ValidationError{Field: "name", Reason: "a string value for name is required"}
	}
	return nil
}

func (p SignaturePatch) IsEmpty() bool {
	return len(p.Assignments()) == 0
}

func (p SignaturePatch) Assignments() []Assignment {
	var out []Assignment
	out = appendIfSet(out, "name", p.Name)
	out = appendIfSet(out, "message", p.Message)
	return out
}

func (p SignaturePatch) Apply(s *Signature) {
	if p.Name.Set {
		s.Name = p.Name.Value
	}
	if p.Message.Set {
		s.Message = nil
		if p.Message.Value != nil {
			msg := *p.Message.Value
			s.Message = &msg
		}
	}
}
