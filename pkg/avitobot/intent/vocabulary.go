// Package intent – vocabulary.go defines the closed intent vocabulary and the
// stock reply templates keyed by intent. The mapping is loaded once and never
// mutated; deployments extend it through configuration, not code.
package intent

// Intent keywords. The classifier may only answer with one of these.
const (
	IntentVisit            = "ВИЗИТ"
	IntentDimensions       = "ГАБАРИТЫ"
	IntentCare             = "УХОД"
	IntentPrice            = "ЦЕНА"
	IntentDelivery         = "ДОСТАВКА"
	IntentRegionalDelivery = "ДОСТАВКА_В_РЕГИОН"
	IntentAvailability     = "НАЛИЧИЕ"
	IntentOffHours         = "НЕРАБОЧЕЕ_ВРЕМЯ"
	IntentDiscount         = "СКИДКА"
	IntentCompleteness     = "КОМПЛЕКТНОСТЬ"

	// Reserved labels: a bare greeting gets no second reply (the bot already
	// greeted), and anything the model cannot place lands on IntentOther.
	IntentGreeting = "ПРИВЕТСТВИЕ"
	IntentOther    = "ДРУГОЕ"
)

// Stock bot messages outside the intent table.
const (
	GreetingMessage         = "Приветствуем Вас в нашем зеленом магазине, сейчас менеджер подключится и ответит на вопросы 🌿"
	GreetingOffHoursMessage = "Приветствуем Вас в нашем зеленом магазине, сейчас менеджеры спят. Ответим вам в рабочее время с 9 до 20 по МСК🌿"
	CantAnswerMessage       = "К сожалению, я как бот могу ответить не на все вопросы. Зову менеджера."
)

// DefaultTemplates returns the stock intent→reply table.
func DefaultTemplates() map[string]string {
	return map[string]string{
		IntentVisit: `🏢 НАШ АДРЕС г. Москва, БЦ "Платформа", Спартаковский переулок, д.2, стр.1 6 подъезд, 4 этаж, офис 33
🚗 На территории БЦ для клиентов есть бесплатная парковка, чтобы воспользоваться парковкой, необходимо заранее заказать пропуск на въезд.
⏰ РЕЖИМ РАБОТЫ Каждый день: с 9:00 до 20:00.
Когда вас ожидать?`,
		IntentDimensions: `У нас есть множество вариантов размеров. Высота растения измеряется от пола и до последнего листочка, включая высоту кашпо.
Хотите подобрать растение?`,
		IntentCare: `Вижу у вас вопросы по уходу, у нас есть услуга онлайн консультации. Она стоит 1700 руб, давайте оформим`,
		IntentPrice: `Добрый день!
Сейчас я уточню цену и вернусь к вам`,
		IntentDelivery: `Можем отправить по Москве и области:
- Нашим курьером, вы получите растение в течении трех дней
- Яндекс доставкой в ближайшие сроки
С Авито доставкой мы не работаем.
Какой вариант интересует?`,
		IntentRegionalDelivery: `Доставка в другие регионы осуществляется транспортными компаниями, по их ценам. Какое растение вас интересует?`,
		IntentAvailability:     `Сейчас проверю наличие и вернусь к вам.`,
		IntentOffHours:         `Наши менеджеры сейчас отдыхают, но я отправлю запрос и утром мы вам ответим.`,
		IntentDiscount:         `На данный момент на эту позицию скидок, давайте посмотрим варианты по вашему бюджету. Подскажите, на какую сумму рассчитывали?`,
		IntentCompleteness:     `Вас интересует уже пересаженное растение или в техническом горшке?`,
	}
}
