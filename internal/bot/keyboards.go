package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	cbChangeRequest = "change_request"
	cbFinish        = "finish"

	cbAdminShowUsers    = "admin_show_users"
	cbAdminShowToday    = "admin_show_today"
	cbAdminExportSheets = "admin_export_sheets"
	cbAdminHelp         = "admin_help"
)

const (
	btnShareContact  = "📱 Поделиться контактом"
	btnChangeRequest = "🔄 Поменять запрос"
	btnFinish        = "✅ Завершить"
	btnAdminUsers    = "👥 Все пользователи"
	btnAdminToday    = "📅 Сегодняшние"
	btnAdminExport   = "📊 Выгрузить в Excel"
	btnAdminHelp     = "❓ Помощь"
)

func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(btnShareContact),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func requestActionsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnChangeRequest, cbChangeRequest),
			tgbotapi.NewInlineKeyboardButtonData(btnFinish, cbFinish),
		),
	)
}

func adminKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnAdminUsers, cbAdminShowUsers),
			tgbotapi.NewInlineKeyboardButtonData(btnAdminToday, cbAdminShowToday),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnAdminExport, cbAdminExportSheets),
			tgbotapi.NewInlineKeyboardButtonData(btnAdminHelp, cbAdminHelp),
		),
	)
}

func basicCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
	}
}

func adminCommands() []tgbotapi.BotCommand {
	return append(basicCommands(),
		tgbotapi.BotCommand{Command: "show_users", Description: "👥 Показать всех пользователей"},
		tgbotapi.BotCommand{Command: "show_today", Description: "📅 Сегодняшние регистрации"},
		tgbotapi.BotCommand{Command: "export_sheets", Description: "📊 Выгрузить базу в Excel"},
	)
}
