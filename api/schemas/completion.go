// api/schemas/completion.go
package schemas

import "strings"

// CompletionShape names the wire shape a RawCompletion was read from.
type CompletionShape string

const (
	ShapeMessageContent CompletionShape = "message-content"
	ShapeOutputList     CompletionShape = "output-list"
)

// RawCompletion is an unprocessed model reply normalized to one text payload.
// There are exactly two variants, MessageContent and OutputList; callers never
// branch on the shape, they ask for Text.
type RawCompletion interface {
	// Text returns the payload and whether one was present at all.
	Text() (string, bool)
	Shape() CompletionShape
}

// MessageContent is the single-string reply of a chat style call.
type MessageContent struct {
	Content string
	// Refusal is set when the model declined to answer instead of producing content.
	Refusal string
}

func (m MessageContent) Text() (string, bool) {
	return m.Content, m.Content != ""
}

func (m MessageContent) Shape() CompletionShape { return ShapeMessageContent }

// ContentBlock is one element of an output-list reply.
type ContentBlock struct {
	Type    string
	Text    string
	Refusal string
}

// OutputList is the block-sequence reply of a responses style call.
type OutputList struct {
	Blocks []ContentBlock
}

// Text concatenates the text of every block in order. Blocks without text,
// such as refusals or tool calls, contribute nothing.
func (o OutputList) Text() (string, bool) {
	var b strings.Builder
	for _, block := range o.Blocks {
		b.WriteString(block.Text)
	}
	return b.String(), b.Len() > 0
}

func (o OutputList) Shape() CompletionShape { return ShapeOutputList }

// RefusalOf returns any refusal text carried by raw.
func RefusalOf(raw RawCompletion) string {
	switch r := raw.(type) {
	case MessageContent:
		return r.Refusal
	case *MessageContent:
		if r != nil {
			return r.Refusal
		}
	case OutputList:
		return r.refusal()
	case *OutputList:
		if r != nil {
			return r.refusal()
		}
	}
	return ""
}

func (o OutputList) refusal() string {
	var parts []string
	for _, block := range o.Blocks {
		if block.Refusal != "" {
			parts = append(parts, block.Refusal)
		}
	}
	return strings.Join(parts, " ")
}
