// Package pronoun defines the Vietnamese address-term conventions applied to
// both participants of a conversation.
package pronoun

// Pair is an immutable naming convention: how each participant refers to
// themselves and addresses the other.
type Pair struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	UserPronoun string `json:"userPronoun"` // how the user refers to themselves
	UserByChar  string `json:"userByChar"`  // how the character addresses the user
	CharPronoun string `json:"charPronoun"` // how the character refers to themselves
	CharByUser  string `json:"charByUser"`  // how the user addresses the character
	Context     string `json:"context"`
}

// Catalog returns the built-in pronoun conventions.
func Catalog() []Pair {
	return []Pair{
		{
			ID:          "neutral",
			Name:        "Trung tính",
			UserPronoun: "tôi",
			UserByChar:  "bạn",
			CharPronoun: "tôi",
			CharByUser:  "bạn",
			Context:     "Giao tiếp thông thường, trung tính",
		},
		{
			ID:          "romantic-fm",
			Name:        "Em - Anh (Nữ → Nam)",
			UserPronoun: "em",
			UserByChar:  "em",
			CharPronoun: "anh",
			CharByUser:  "anh",
			Context:     "Quan hệ tình cảm, nữ gọi nam",
		},
		{
			ID:          "romantic-mf",
			Name:        "Anh - Em (Nam → Nữ)",
			UserPronoun: "anh",
			UserByChar:  "anh",
			CharPronoun: "em",
			CharByUser:  "em",
			Context:     "Quan hệ tình cảm, nam gọi nữ",
		},
		{
			ID:          "friends",
			Name:        "Mình - Cậu (Bạn bè)",
			UserPronoun: "mình",
			UserByChar:  "cậu",
			CharPronoun: "mình",
			CharByUser:  "cậu",
			Context:     "Bạn bè thân thiết",
		},
		{
			ID:          "student",
			Name:        "Tớ - Cậu (Học sinh)",
			UserPronoun: "tớ",
			UserByChar:  "cậu",
			CharPronoun: "tớ",
			CharByUser:  "cậu",
			Context:     "Bạn học, học sinh",
		},
		{
			ID:          "fantasy",
			Name:        "Ta - Ngươi (Fantasy)",
			UserPronoun: "ta",
			UserByChar:  "ngươi",
			CharPronoun: "ta",
			CharByUser:  "ngươi",
			Context:     "Fantasy, cổ trang, quyền lực",
		},
		{
			ID:          "royal",
			Name:        "Trẫm - Khanh (Hoàng gia)",
			UserPronoun: "trẫm",
			UserByChar:  "bệ hạ",
			CharPronoun: "thần",
			CharByUser:  "khanh",
			Context:     "Vua - Thần tử",
		},
		{
			ID:          "family-child",
			Name:        "Con - Mẹ/Bố (Gia đình)",
			UserPronoun: "con",
			UserByChar:  "con",
			CharPronoun: "mẹ",
			CharByUser:  "mẹ",
			Context:     "Quan hệ gia đình",
		},
	}
}

// Find looks up a built-in pair by identifier.
func Find(id string) (Pair, bool) {
	for _, p := range Catalog() {
		if p.ID == id {
			return p, true
		}
	}
	return Pair{}, false
}
