package pricing

import "strings"

// ConflictPrompt is the question put to the shopper when both discounts apply.
const ConflictPrompt = "Only one discount may be applied. Type 'M' for Member or 'V' for Volume:"

// DiscountChoice records how a member/volume conflict was resolved.
type DiscountChoice int

const (
	// ChoiceUnset means the question has not been asked yet.
	ChoiceUnset DiscountChoice = iota
	// ChoiceMember keeps the member discount and drops the volume discount.
	ChoiceMember
	// ChoiceVolume keeps the volume discount and drops the member discount.
	ChoiceVolume
	// ChoiceNeither is any other answer, blank included; both discounts are dropped.
	ChoiceNeither
)

// ParseChoice maps a submitted answer to a choice. Only "m" and "v" are
// recognized, case-insensitively and untrimmed; it never returns ChoiceUnset.
func ParseChoice(answer string) DiscountChoice {
	switch strings.ToLower(answer) {
	case "m":
		return ChoiceMember
	case "v":
		return ChoiceVolume
	default:
		return ChoiceNeither
	}
}

func (c DiscountChoice) String() string {
	switch c {
	case ChoiceMember:
		return "member"
	case ChoiceVolume:
		return "volume"
	case ChoiceNeither:
		return "neither"
	default:
		return "unset"
	}
}
