package cards

import "strings"

// ScryfallCard represents the Scryfall card object as found in bulk data files
// and API exports. Only the fields the synergy engine consumes are decoded.
type ScryfallCard struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Layout        string             `json:"layout"`
	ImageURIs     *ImageURIs         `json:"image_uris,omitempty"`
	ManaCost      string             `json:"mana_cost"`
	CMC           float64            `json:"cmc"`
	TypeLine      string             `json:"type_line"`
	OracleText    string             `json:"oracle_text,omitempty"`
	Keywords      []string           `json:"keywords,omitempty"`
	Power         string             `json:"power,omitempty"`
	Toughness     string             `json:"toughness,omitempty"`
	Colors        []string           `json:"colors"`
	ColorIdentity []string           `json:"color_identity"`
	Set           string             `json:"set"`
	Collector     string             `json:"collector_number"`
	Rarity        string             `json:"rarity"`
	CardFaces     []ScryfallCardFace `json:"card_faces,omitempty"`
}

// ScryfallCardFace represents a face of a multi-faced card in Scryfall format.
type ScryfallCardFace struct {
	Name       string     `json:"name"`
	TypeLine   string     `json:"type_line"`
	ManaCost   string     `json:"mana_cost"`
	OracleText string     `json:"oracle_text"`
	Colors     []string   `json:"colors"`
	ImageURIs  *ImageURIs `json:"image_uris,omitempty"`
}

// ImageURIs contains URLs for card images in various sizes.
type ImageURIs struct {
	Small   string `json:"small"`
	Normal  string `json:"normal"`
	Large   string `json:"large"`
	ArtCrop string `json:"art_crop"`
}

// ToCard converts a ScryfallCard to our internal Card representation.
// Multi-faced cards without top-level text or images borrow them from their faces.
func (sc *ScryfallCard) ToCard() *Card {
	card := &Card{
		ID:            sc.ID,
		Name:          sc.Name,
		ManaCost:      sc.ManaCost,
		CMC:           sc.CMC,
		Colors:        sc.Colors,
		ColorIdentity: sc.ColorIdentity,
		TypeLine:      sc.TypeLine,
		OracleText:    sc.OracleText,
		Keywords:      sc.Keywords,
		Power:         sc.Power,
		Toughness:     sc.Toughness,
		SetCode:       sc.Set,
		Collector:     sc.Collector,
		Rarity:        sc.Rarity,
	}

	if sc.ImageURIs != nil {
		card.ImageURI = sc.ImageURIs.Normal
	}

	if len(sc.CardFaces) == 0 {
		return card
	}

	front := sc.CardFaces[0]
	if card.ImageURI == "" && front.ImageURIs != nil {
		card.ImageURI = front.ImageURIs.Normal
	}
	if card.ManaCost == "" {
		card.ManaCost = front.ManaCost
	}
	if len(card.Colors) == 0 {
		card.Colors = front.Colors
	}

	// Faces carry the rules text for transform/modal cards
	if card.OracleText == "" {
		texts := make([]string, 0, len(sc.CardFaces))
		for _, face := range sc.CardFaces {
			if face.OracleText != "" {
				texts = append(texts, face.OracleText)
			}
		}
		card.OracleText = strings.Join(texts, "\n//\n")
	}

	return card
}
