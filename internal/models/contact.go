package models

// ContactMessage: заявка с формы обратной связи. Не связана с посылками.
// Email всегда адрес отправителя (для ответа). To пуст для заявок с сайта:
// relay шлёт их на свой адрес по умолчанию. Служебные письма notifier
// задают To явно.
type ContactMessage struct {
	To      string `json:"to,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
