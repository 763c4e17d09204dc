package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleReply = `SUMMARY:
Team agreed on budget.

ACTION ITEMS FOR EDUARDO MANGARELLI:
- Send revised proposal
- Schedule follow-up call

PARTICIPANTS:
- Alice
- Bob`

func TestExtractActionItems(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected []string
	}{
		{
			name:     "well formed reply",
			reply:    sampleReply,
			expected: []string{"Send revised proposal", "Schedule follow-up call"},
		},
		{
			name: "no specific action items line is dropped",
			reply: `SUMMARY:
Nothing to do.

ACTION ITEMS FOR EDUARDO MANGARELLI:
- No specific action items identified

PARTICIPANTS:
- Alice`,
			expected: []string{},
		},
		{
			name: "no specific action items in any casing",
			reply: `ACTION ITEMS FOR EDUARDO MANGARELLI:
- NO SPECIFIC ACTION ITEMS IDENTIFIED
- Review contract`,
			expected: []string{"Review contract"},
		},
		{
			name:     "missing marker",
			reply:    "SUMMARY:\nJust chatter.\n\nPARTICIPANTS:\n- Alice",
			expected: []string{},
		},
		{
			name:     "empty reply",
			reply:    "",
			expected: []string{},
		},
		{
			name: "section never closed",
			reply: `ACTION ITEMS FOR EDUARDO MANGARELLI:
- First
- Second`,
			expected: []string{"First", "Second"},
		},
		{
			name: "marker matched case-insensitively",
			reply: `Action Items for Eduardo Mangarelli:
- Book the room
PARTICIPANTS:
- Carol`,
			expected: []string{"Book the room"},
		},
		{
			name: "participants header is case-sensitive",
			reply: `ACTION ITEMS FOR EDUARDO MANGARELLI:
- Book the room
participants:
- Carol`,
			expected: []string{"Book the room", "Carol"},
		},
		{
			name: "indented lines are trimmed before checks",
			reply: `  ACTION ITEMS FOR EDUARDO MANGARELLI:
    -   Call the vendor
	PARTICIPANTS:
  - Dave`,
			expected: []string{"Call the vendor"},
		},
		{
			name: "non dash lines ignored",
			reply: `ACTION ITEMS FOR EDUARDO MANGARELLI:
1. Numbered item
* Starred item
- Dashed item
  continuation of dashed item`,
			expected: []string{"Dashed item"},
		},
		{
			name: "bare dash dropped",
			reply: `ACTION ITEMS FOR EDUARDO MANGARELLI:
-
-
- Real item`,
			expected: []string{"Real item"},
		},
		{
			name:     "windows line endings",
			reply:    "ACTION ITEMS FOR EDUARDO MANGARELLI:\r\n- One\r\n- Two\r\nPARTICIPANTS:\r\n- Eve\r\n",
			expected: []string{"One", "Two"},
		},
		{
			name: "dash lines before marker ignored",
			reply: `SUMMARY:
- Not an action

ACTION ITEMS FOR EDUARDO MANGARELLI:
- Real action`,
			expected: []string{"Real action"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractActionItems(tt.reply))
		})
	}
}

func TestExtractActionItems_Idempotent(t *testing.T) {
	first := ExtractActionItems(sampleReply)
	second := ExtractActionItems(sampleReply)
	assert.Equal(t, first, second)
}

func TestExtractActionItems_DoesNotShareBacking(t *testing.T) {
	first := ExtractActionItems(sampleReply)
	first[0] = "mutated"

	second := ExtractActionItems(sampleReply)
	assert.Equal(t, "Send revised proposal", second[0])
}
