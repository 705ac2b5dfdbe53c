// Package format converts the lightweight markdown used by the message
// templates (*bold*, _italic_) into Telegram message entities, so text
// containing user-provided titles never needs escaping for a parse
// mode.
package format

import (
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ParseResult contains plain text and message entities
type ParseResult struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

// UTF16Len calculates the UTF-16 length of a string. Telegram entity
// offsets and lengths count UTF-16 code units, not bytes or runes.
func UTF16Len(s string) int {
	length := 0
	for _, b := range []byte(s) {
		if (b & 0xc0) != 0x80 {
			if b >= 0xf0 {
				length += 2 // Non-BMP characters (surrogate pairs)
			} else {
				length += 1
			}
		}
	}
	return length
}

var (
	boldRe   = regexp.MustCompile(`\*([^*\n]+?)\*`)
	italicRe = regexp.MustCompile(`_([^_\n]+?)_`)
)

// ParseMarkdown strips *bold* and _italic_ markers from text and
// returns the plain text plus the corresponding entities.
func ParseMarkdown(text string) ParseResult {
	var entities []tgbotapi.MessageEntity

	result, entities := extract(text, boldRe, "bold", entities)
	result, entities = extract(result, italicRe, "italic", entities)

	// Telegram requires entities sorted by offset.
	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			if entities[j].Offset < entities[i].Offset {
				entities[i], entities[j] = entities[j], entities[i]
			}
		}
	}

	return ParseResult{
		Text:     strings.TrimRight(result, " \n"),
		Entities: entities,
	}
}

func extract(text string, re *regexp.Regexp, entityType string, entities []tgbotapi.MessageEntity) (string, []tgbotapi.MessageEntity) {
	for {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			return text, entities
		}

		fullStart, fullEnd := loc[0], loc[1]
		inner := text[loc[2]:loc[3]]

		entities = append(entities, tgbotapi.MessageEntity{
			Type:   entityType,
			Offset: UTF16Len(text[:fullStart]),
			Length: UTF16Len(inner),
		})

		text = text[:fullStart] + inner + text[fullEnd:]
	}
}
