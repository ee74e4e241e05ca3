package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации, которым она привязана к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Ключи маршрутизации уведомлений.
const (
	CreditsRoutingKey = "credits"
	CreditsQueue      = "notification.credits"
)

// GetNotificationQueues возвращает очереди, которые слушает notification-sender.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: CreditsQueue, RoutingKey: CreditsRoutingKey},
	}
}
