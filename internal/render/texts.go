package render

// Fixed text shown to anonymous callers who scan a certificate code.
// They never see certificate data, only this invitation.
const PromoText = "Чтобы воспользоваться 🎁 Подарочным сертификатом, приглашаем вас в нашу виртуальную арену VRPOINT.BY 🕶✨\n" +
	"Забронировать услугу можно на сайте: https://vrpoint.by 🌐\n\n" +
	"📍 Наши адреса в Минске:\n" +
	"• Я. Коласа, 37\n" +
	"• Маяковского, 6 (ТЦ «Червенский»)\n\n" +
	"📞 Телефон для связи: +375291419921\n\n" +
	"До встречи в VR 🚀🎮"

// Menu-button labels. The free-text router matches these verbatim.
const (
	LabelNewCert   = "➕ Создать сертификат"
	LabelJournal   = "📒 Журнал"
	LabelOpenSheet = "🔗 Открыть Google-таблицу"

	LabelSendPDF   = "📄 PDF в Telegram"
	LabelSendEmail = "✉️ На email"
	LabelCancel    = "❌ Отмена"
)

// Operator-facing texts
const (
	TextAccessDenied = "Доступ ограничен."
	TextChooseAction = "Выберите действие:"
	TextCancelled    = "Отменено."
	TextDone         = "Готово."
	TextGenerating   = "Генерирую сертификат…"

	TextPromptAmount         = "Введите сумму (BYN), только цифры. Например: 70\n\n/cancel — отмена"
	TextAmountInvalid        = "Нужно число > 0. Пример: 70"
	TextPromptRecipientName  = "Имя получателя (опционально). Или напишите '-' чтобы пропустить."
	TextPromptDonorFirst     = "Имя дарителя (опционально). Или '-' чтобы пропустить."
	TextPromptDonorLast      = "Фамилия дарителя (опционально). Или '-' чтобы пропустить."
	TextPromptRecipientEmail = "Email получателя (опционально). Или '-' чтобы пропустить."
	TextEmailMissing         = "Вы выбрали email, но email не указан. Введите email или выберите PDF в Telegram."

	TextScanUsage    = "Использование: /scan 123456"
	TextPDFUsage     = "Использование: /pdf 12345 (где 12345 — код сертификата)"
	TextCodeRequired = "Нужен числовой код."

	TextJournalEmpty    = "Журнал пуст."
	TextJournalHeader   = "Последние сертификаты (действия под каждым):"
	TextSheetMissing    = "Ссылка на таблицу не настроена."
	TextSheetPrompt     = "Журнал сертификатов:"
	TextSheetExtra      = "Дополнительно:"
	TextJournalLink     = "Журнал:"
	LabelOpenSheetShort = "Открыть журнал"

	TextUnknownAction   = "Неизвестное действие."
	TextBadCallback     = "Некорректная команда."
	TextDeleteCancelled = "Ок, не удаляю."

	ToastPreparingPDF = "Готовлю PDF…"
	ToastSendingEmail = "Отправляю email…"
	ToastMarkingUsed  = "Отмечаю как использованный…"
	ToastAnnulling    = "Аннулирую…"
	ToastDeleting     = "Удаляю…"

	// Fixed annotations passed to the backend on mutating calls
	NoteUsedViaTelegram     = "Использован через Telegram"
	ReasonAnnulledViaTelegr = "Аннулирован через Telegram"
)
