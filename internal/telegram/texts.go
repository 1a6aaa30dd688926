package telegram

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
	"github.com/ykvlv/pill-profile-bot/internal/profile"
)

// UI texts. English strings double as catalog keys.
const (
	startText = "👋 I keep track of your malaria prophylaxis.\n\n" +
		"Fill in your profile, set up your medicine with /setup and I will remind you before your pills run out."

	profileTitle       = "👤 Your profile"
	profileTitleEdit   = "✏️ Editing your profile"
	medicinesTitle     = "💊 Medicines"
	noMedicineText     = "No medicine set up yet. Use /setup."
	pendingMark        = "(unsaved)"
	reminderLineFmt    = "⏰ Remind me %s before I run out"
	remainingFmt       = "You have %d %s of %s left."
	reminderWeeksKey   = "%d weeks"
	reminderPushFmt    = "⚠️ You have %d %s of %s left. Time to refill your prophylaxis."
	emptyValue         = "—"
	editButton         = "✏️ Edit"
	saveButton         = "💾 Save"
	setupButton        = "💊 Set up medicine"
	refreshButton      = "🔄 Refresh"
	sendLocationButton = "📍 Send location"

	askFieldFmt       = "Enter your %s:"
	askStockFmt       = "How many pills of %s do you have?"
	askLocationText   = "Send your location or type a city name."
	choosePresetText  = "Choose your medicine:"
	chooseRemindText  = "How long before running out should I remind you?"
	savedText         = "Profile saved ✅"
	notEditingText    = "Press Edit first."
	invalidNumberText = "Please enter a whole number, 0 or more."
	genericErrorText  = "Something went wrong. Please try again later."
)

var fieldLabels = map[profile.Field]string{
	profile.FieldFirstName: "First name",
	profile.FieldLastName:  "Last name",
	profile.FieldGender:    "Gender",
	profile.FieldAge:       "Age",
	profile.FieldLocation:  "Location",
	profile.FieldEmail:     "E-mail",
	profile.FieldPhone:     "Phone",
}

var supported = []language.Tag{language.English, language.French}

var matcher = language.NewMatcher(supported)

// NewPrinter returns a printer for lang ("en", "fr"); unknown tags fall
// back to English.
func NewPrinter(lang string) *message.Printer {
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	for _, s := range supported {
		if b, _ := s.Base(); b == base {
			return message.NewPrinter(s)
		}
	}
	return message.NewPrinter(language.English)
}

func init() {
	mustSet := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	mustSet(message.Set(language.English, reminderWeeksKey,
		plural.Selectf(1, "%d", "one", "%d week", "other", "%d weeks")))
	mustSet(message.Set(language.French, reminderWeeksKey,
		plural.Selectf(1, "%d", "one", "%d semaine", "other", "%d semaines")))

	fr := map[string]string{
		startText: "👋 Je m'occupe du suivi de votre traitement antipaludique.\n\n" +
			"Remplissez votre profil, configurez votre médicament avec /setup et je vous préviendrai avant la fin de vos comprimés.",
		profileTitle:       "👤 Votre profil",
		profileTitleEdit:   "✏️ Modification du profil",
		medicinesTitle:     "💊 Médicaments",
		noMedicineText:     "Aucun médicament configuré. Utilisez /setup.",
		pendingMark:        "(non enregistré)",
		reminderLineFmt:    "⏰ Me prévenir %s avant la fin",
		remainingFmt:       "Il vous reste %d %s de %s.",
		reminderPushFmt:    "⚠️ Il vous reste %d %s de %s. Pensez à renouveler votre traitement.",
		editButton:         "✏️ Modifier",
		saveButton:         "💾 Enregistrer",
		setupButton:        "💊 Configurer le médicament",
		refreshButton:      "🔄 Actualiser",
		sendLocationButton: "📍 Envoyer ma position",
		askFieldFmt:        "Saisissez votre %s :",
		askStockFmt:        "Combien de comprimés de %s avez-vous ?",
		askLocationText:    "Envoyez votre position ou saisissez une ville.",
		choosePresetText:   "Choisissez votre médicament :",
		chooseRemindText:   "Combien de temps avant la fin dois-je vous prévenir ?",
		savedText:          "Profil enregistré ✅",
		notEditingText:     "Appuyez d'abord sur Modifier.",
		invalidNumberText:  "Saisissez un nombre entier positif ou nul.",
		genericErrorText:   "Une erreur est survenue. Réessayez plus tard.",

		"First name": "Prénom",
		"Last name":  "Nom",
		"Gender":     "Genre",
		"Age":        "Âge",
		"Location":   "Lieu",
		"E-mail":     "E-mail",
		"Phone":      "Téléphone",

		domain.UnitDay:   "jour",
		domain.UnitDays:  "jours",
		domain.UnitWeek:  "semaine",
		domain.UnitWeeks: "semaines",

		domain.FirstNameMissing.Key(): "Veuillez saisir votre prénom.",
		domain.LastNameMissing.Key():  "Veuillez saisir votre nom.",
		domain.AgeMissing.Key():       "Veuillez saisir votre âge.",
		domain.InvalidAge.Key():       "L'âge doit être un nombre entier.",
		domain.EmailMissing.Key():     "Veuillez saisir votre e-mail.",
		domain.InvalidEmail.Key():     "L'adresse e-mail n'est pas valide.",
	}
	for key, msg := range fr {
		mustSet(message.SetString(language.French, key, msg))
	}
}
