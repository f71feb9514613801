package bot

const (
	msgGreetingFormat = "👋 Здравствуйте, %s!\n\n" +
		"Для продолжения работы с ботом необходимо предоставить ваш контакт."
	msgSharePrompt  = "Пожалуйста, поделитесь контактом, используя кнопку ниже."
	msgContactSaved = "✅ Контакт успешно получен!\n\n" +
		"Теперь, пожалуйста, введите ваш запрос в свободной форме.\n" +
		"Это может быть текст, фото, голосовое сообщение или видеокружок."
	msgContactFailed   = "❌ Произошла ошибка при сохранении контакта. Попробуйте еще раз."
	msgRequestAccepted = "🙏 Спасибо! Ваш запрос принят и будет обработан в ближайшее время."
	msgRequestFailed   = "❌ Произошла ошибка при сохранении запроса. Попробуйте еще раз."
	msgNewRequest      = "Пожалуйста, введите новый запрос в свободной форме.\n" +
		"Это может быть текст, фото, голосовое сообщение или видеокружок."
	msgFarewell      = "✅ Спасибо за обращение! До свидания!"
	msgHintStart     = "Чтобы начать, нажмите /start."
	msgHintSubmitted = "Ваш запрос уже принят. Чтобы изменить его, нажмите «🔄 Поменять запрос» под ответом бота или /start, чтобы начать заново."
	msgUnknownCmd    = "Неизвестная команда. Нажмите /help для справки."

	msgAdminWelcome = "👋 Добро пожаловать в панель администратора!\n\n" +
		"Используйте команды из меню бота (кнопка 'Меню' рядом со строкой ввода):\n" +
		"• /show_users - показать всех пользователей\n" +
		"• /show_today - показать сегодняшние регистрации\n" +
		"• /export_sheets - выгрузить базу в Excel\n\n" +
		"Или нажмите /help для получения справки."
	msgNoAccess   = "❌ У вас нет доступа к этой команде."
	msgNoUsers    = "📭 Пользователей пока нет."
	msgNoneToday  = "📭 Сегодня новых регистраций нет."
	msgLoadFailed = "❌ Не удалось загрузить данные. Попробуйте позже."

	msgExportStart        = "🔄 Начинаю экспорт данных в Google Sheets..."
	msgExportDisabled     = "❌ Экспорт не настроен: укажите GoogleSheetsID и файл сервисного аккаунта."
	msgExportSheetFormat  = "📊 Таблица: %s\n🔗 Ссылка: %s"
	msgExportFoundFormat  = "👥 Найдено %d пользователей в базе данных"
	msgExportNothing      = "ℹ️ Нет пользователей для экспорта"
	msgExportDoneFormat   = "✅ Экспорт завершен успешно!\n\nДобавлено новых строк: %d"
	msgExportFailedFormat = "❌ Ошибка экспорта: %v"

	msgAdminHelp = "🤖 Помощь по командам бота:\n\n" +
		"Для администраторов:\n" +
		"• /start - приветствие и инструкции\n" +
		"• /show_users - показать всех пользователей\n" +
		"• /show_today - показать сегодняшние регистрации\n" +
		"• /export_sheets - выгрузить базу в Excel\n" +
		"• /help - показать эту справку\n\n" +
		"💡 Все команды доступны в меню бота (кнопка 'Меню' рядом со строкой ввода)\n\n" +
		"Для пользователей:\n" +
		"• /start - начать работу с ботом"
	msgAdminMenuHelp = "🤖 Помощь по управлению ботом:\n\n" +
		"👥 Все пользователи - показать всех зарегистрированных пользователей\n" +
		"📅 Сегодняшние - показать регистрации за сегодня\n" +
		"📊 Выгрузить в Excel - экспортировать новых пользователей в Google Sheets\n" +
		"❓ Помощь - показать эту справку\n\n" +
		"💡 Используйте кнопки выше для управления ботом"
	msgUserHelp = "🤖 Помощь по использованию бота:\n\n" +
		"1. Нажмите /start для начала работы\n" +
		"2. Поделитесь контактом\n" +
		"3. Отправьте ваш запрос (текст, фото, голосовое или видеокружок)\n" +
		"4. При необходимости измените запрос или завершите работу"
)
