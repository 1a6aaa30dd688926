package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/message"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
	"github.com/ykvlv/pill-profile-bot/internal/profile"
)

// Callback data.
const (
	cbEdit         = "edit"
	cbSave         = "save"
	cbSetup        = "setup"
	cbRefresh      = "refresh"
	cbLocation     = "location"
	cbFieldPrefix  = "field:"
	cbStockPrefix  = "stock:"
	cbRemindPrefix = "remind:"
	cbSetupPrefix  = "setup:"
)

func reminderLabel(p *message.Printer, r domain.ReminderInterval) string {
	return p.Sprintf(reminderWeeksKey, r.Weeks())
}

func unitLabel(p *message.Printer, unit string) string {
	return p.Sprintf(unit)
}

// remainingText renders "You have N <unit> of X left.".
func remainingText(p *message.Printer, stock int, unit, medicine string) string {
	return p.Sprintf(remainingFmt, stock, unitLabel(p, unit), medicine)
}

// reminderText is the push message sent by the scheduler.
func reminderText(p *message.Printer, m domain.Medicine) string {
	stock := m.Stock()
	unit := domain.UnitLabel(stock, m.IntervalDays)
	return p.Sprintf(reminderPushFmt, stock, unitLabel(p, unit), m.Name)
}

// editToast is the toast after a successful edit/save toggle. The toggle
// only ends in read-only mode when it saved.
func editToast(p *message.Printer, mode domain.Mode) string {
	if mode == domain.ReadOnly {
		return p.Sprintf(savedText)
	}
	return ""
}

// screenText renders the profile screen body.
func screenText(p *message.Printer, v profile.View) string {
	var b strings.Builder

	if v.Mode == domain.Editing {
		b.WriteString(p.Sprintf(profileTitleEdit))
	} else {
		b.WriteString(p.Sprintf(profileTitle))
	}
	b.WriteString("\n")
	for _, f := range v.Fields {
		value := f.Value
		if value == "" {
			value = emptyValue
		}
		b.WriteString("• " + p.Sprintf(fieldLabels[f.Field]) + ": " + value + "\n")
	}

	b.WriteString("\n" + p.Sprintf(medicinesTitle) + "\n")
	if len(v.Rows) == 0 {
		b.WriteString(p.Sprintf(noMedicineText) + "\n")
	}
	for _, row := range v.Rows {
		line := "• " + row.Name + ": " + strconv.Itoa(row.Stock)
		if row.Pending {
			line += " " + p.Sprintf(pendingMark)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + p.Sprintf(reminderLineFmt, reminderLabel(p, v.Reminder)) + "\n")

	if v.Remaining.Present {
		line := remainingText(p, v.Remaining.Stock, v.Remaining.Unit, v.Remaining.Medicine)
		if v.Remaining.Alert {
			line = "❗ " + line
		}
		b.WriteString("\n" + line)
	}
	return strings.TrimRight(b.String(), "\n")
}

// screenKeyboard shows Edit, Setup and Refresh in read-only mode; in edit
// mode every field, medicine row and reminder option becomes a button.
func screenKeyboard(p *message.Printer, v profile.View) tgbotapi.InlineKeyboardMarkup {
	if v.Mode != domain.Editing {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(p.Sprintf(editButton), cbEdit),
				tgbotapi.NewInlineKeyboardButtonData(p.Sprintf(setupButton), cbSetup),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(p.Sprintf(refreshButton), cbRefresh),
			),
		)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, f := range v.Fields {
		if !f.Enabled {
			continue
		}
		data := cbFieldPrefix + string(f.Field)
		if f.Field == profile.FieldLocation {
			data = cbLocation
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(p.Sprintf(fieldLabels[f.Field]), data))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	for _, m := range v.Rows {
		if !m.Enabled {
			continue
		}
		label := "💊 " + m.Name + ": " + strconv.Itoa(m.Stock)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbStockPrefix+m.MedicineID.String()),
		))
	}

	if v.ReminderEnabled {
		rows = append(rows, reminderButtons(p, v.Reminder))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(p.Sprintf(saveButton), cbSave),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func reminderButtons(p *message.Printer, selected domain.ReminderInterval) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	for _, r := range domain.ReminderIntervals {
		label := reminderLabel(p, r)
		if r == selected {
			label = "✓ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cbRemindPrefix+strconv.Itoa(r.Days())))
	}
	return row
}

func presetsKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, preset := range domain.Presets {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(preset.Name, cbSetupPrefix+preset.Key),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// mainMenuKeyboard is the persistent reply keyboard.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/profile"),
			tgbotapi.NewKeyboardButton("/edit"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/setup"),
			tgbotapi.NewKeyboardButton("/remind"),
		),
	)
}

func locationKeyboard(p *message.Printer) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation(p.Sprintf(sendLocationButton)),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}
