// Package messages holds every user-facing text template. Copy is
// Italian, rendered through internal/format (*bold*, _italic_).
package messages

import (
	"fmt"
	"strings"

	"github.com/svampito/nudgebot/internal/models"
)

var emoji = map[models.Category]string{
	models.CategoryMedicine: "💊",
	models.CategoryBirthday: "🎂",
	models.CategoryCar:      "🚗",
	models.CategoryHouse:    "🏠",
	models.CategoryHealth:   "🩺",
	models.CategoryDocument: "📄",
	models.CategoryHabit:    "💧",
	models.CategoryGeneric:  "📌",
}

func Emoji(category models.Category) string {
	if e, ok := emoji[category]; ok {
		return e
	}
	return "📌"
}

// DefaultAdvanceDays is the advance-notice window applied at creation
// time for deadline-style categories.
func DefaultAdvanceDays(category models.Category) int {
	switch category {
	case models.CategoryDocument:
		return 90
	case models.CategoryCar:
		return 30
	case models.CategoryHouse:
		return 5
	case models.CategoryHealth, models.CategoryBirthday:
		return 3
	}
	return 0
}

const Welcome = "👋 *Ciao! Sono lo Svampito 👻.*\n\n" +
	"Ti aiuto a ricordare tutto quello che la tua testa dimentica: " +
	"scadenze, appuntamenti, bollette, compleanni, farmaci, abitudini.\n\n" +
	"Scrivimi le cose come le diresti a un amico, tipo:\n" +
	"_\"ricordami di pagare la palestra il 15 di ogni mese\"_\n\n" +
	"E io non ti mollo finché non l'hai fatto 😄\n\n" +
	"Iniziamo?"

const WakeTimeAsk = "⏰ *A che ora ti svegli di solito?*\n\n" +
	"Così evito di scriverti alle 6 di mattina."

const OnboardingDone = "✅ *Tutto pronto!*\n\n" +
	"Da ora in poi scrivimi qualsiasi cosa da ricordare. " +
	"Qualche esempio:\n\n" +
	"📌 _\"domani alle 10 chiama l'idraulico\"_\n" +
	"📌 _\"ogni lunedì mattina metti la lavatrice\"_\n" +
	"📌 _\"tra 3 ore controlla il forno\"_\n" +
	"📌 _\"ricordami di bere acqua alle 10, 13, 16 e 19\"_\n\n" +
	"Scrivi /help se ti perdi. Ci sono! 💪"

const Help = "*Come funziono:*\n\n" +
	"Scrivimi cosa ricordare, in italiano, come ti viene. " +
	"Quando arriva il momento ti avviso, e se non rispondi insisto (gentilmente 😉).\n\n" +
	"*Comandi:*\n" +
	"/oggi — i reminder di oggi\n" +
	"/domani — quelli di domani\n" +
	"/settimana — i prossimi 7 giorni\n" +
	"/lista — tutti i reminder attivi\n" +
	"/farmaci — solo i farmaci\n" +
	"/scadenze — le scadenze in arrivo\n" +
	"/fatto — conferma l'ultimo reminder\n" +
	"/cancella <n> — cancella un reminder\n" +
	"/silenzio — orari in cui non disturbare\n" +
	"/timezone — cambia fuso orario\n" +
	"/impostazioni — le tue impostazioni\n" +
	"/export — scarica i tuoi reminder in JSON"

const NotUnderstood = "🤔 Non ho capito bene. Prova a scrivere cosa vuoi ricordare, " +
	"ad esempio:\n_\"domani alle 10 chiama il dentista\"_"

const ParsingDisabled = "⚠️ La comprensione del linguaggio naturale non è configurata. " +
	"Chiedi a chi gestisce il bot di impostare la chiave AI."

// Nudge1 is the initial fire. Medicine slots get their position in the
// day's sequence.
func Nudge1(r *models.Reminder) string {
	if r.Category == models.CategoryMedicine && r.SlotTotal != nil {
		slot := 1
		if r.SlotIndex != nil {
			slot = *r.SlotIndex + 1
		}
		suffix := ""
		if slot == *r.SlotTotal {
			suffix = " — ultimo di oggi 👏"
		}
		return fmt.Sprintf("%s *%s* (%d/%d)%s", Emoji(r.Category), r.Title, slot, *r.SlotTotal, suffix)
	}
	return fmt.Sprintf("🔔 *%s*", r.Title)
}

func Nudge2(r *models.Reminder) string {
	if r.Category == models.CategoryMedicine {
		return fmt.Sprintf("%s _Ehi, %s?_", Emoji(r.Category), strings.ToLower(r.Title))
	}
	return fmt.Sprintf("👀 _Ehi, %s?_", strings.ToLower(r.Title))
}

func Nudge3(r *models.Reminder) string {
	if r.Category == models.CategoryMedicine {
		return fmt.Sprintf("💊 _Ultimo reminder per %s. Saltata?_", strings.ToLower(r.Title))
	}
	return fmt.Sprintf("🫠 _Ultimo nudge per oggi: %s. Lo sposto a domani?_", strings.ToLower(r.Title))
}

// Nudge returns the text for the given escalation level (1-based).
func Nudge(r *models.Reminder, level int) string {
	switch level {
	case 1:
		return Nudge1(r)
	case 2:
		return Nudge2(r)
	default:
		return Nudge3(r)
	}
}

func SnoozeWarning(r *models.Reminder) string {
	return fmt.Sprintf(
		"🤔 Hai posticipato *\"%s\"* %d volte.\n\nVuoi spostarlo a settimana prossima o lo cancelliamo?",
		r.Title, r.SnoozeCount,
	)
}

func DoneResponse() string      { return "✅ Fatto! Una cosa in meno a cui pensare." }
func SkippedResponse() string   { return "⏭ Saltata. Ti ricorderò alla prossima." }
func CancelledResponse() string { return "🗑 Cancellato." }

func SnoozedResponse(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("⏰ Ok, ti ricordo tra %d minuti.", minutes)
	}
	return fmt.Sprintf("⏰ Ok, ti ricordo tra %d ora.", minutes/60)
}

func DeferredResponse(localTime string) string {
	return fmt.Sprintf("📅 Ok, spostato a domani (%s).", localTime)
}

func DeferredWeekResponse() string { return "📅 Spostato a settimana prossima." }

// DigestItem is one reminder line in the morning digest; multi-time
// siblings collapse into a single item with all their times.
type DigestItem struct {
	Title    string
	Category models.Category
	Times    []string
	Note     string
}

func MorningDigest(items []DigestItem) string {
	if len(items) == 0 {
		return "☀️ *Buongiorno!* Oggi non hai nulla in programma. Giornata libera! 🎉"
	}

	lines := []string{"☀️ *Buongiorno! Oggi hai:*\n"}
	for _, item := range items {
		if len(item.Times) > 0 {
			lines = append(lines, fmt.Sprintf("%s %s _(%s)_",
				Emoji(item.Category), item.Title, strings.Join(item.Times, " · ")))
		} else {
			lines = append(lines, fmt.Sprintf("%s %s", Emoji(item.Category), item.Title))
		}
		if item.Note != "" {
			lines = append(lines, "   "+item.Note)
		}
	}
	return strings.Join(lines, "\n")
}

// BirthdayNote is appended to birthday items in the morning digest.
const BirthdayNote = "hai pensato al regalo? 🎁"

func WeeklyDigest(counts models.LogCounts, upcoming int) string {
	var sb strings.Builder
	sb.WriteString("📊 *La tua settimana:*\n\n")
	sb.WriteString(fmt.Sprintf("✅ Fatte: %d\n", counts.Done))
	sb.WriteString(fmt.Sprintf("⏰ Posticipate: %d\n", counts.Snoozed))
	sb.WriteString(fmt.Sprintf("🗑 Cancellate: %d\n", counts.Cancelled))
	sb.WriteString(fmt.Sprintf("\n📅 In arrivo nei prossimi 7 giorni: %d", upcoming))
	return sb.String()
}

func ReminderSaved(r *models.Reminder) string {
	return fmt.Sprintf("%s *%s* — salvato! ✅", Emoji(r.Category), r.Title)
}
