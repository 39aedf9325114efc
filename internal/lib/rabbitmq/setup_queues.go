package rabbitmq

// Ключи маршрутизации уведомлений.
const (
	RoutingKeySchedule = "schedule"
	RoutingKeyUpdate   = "update"
)

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.schedule", RoutingKey: RoutingKeySchedule},
		{QueueName: "notification.update", RoutingKey: RoutingKeyUpdate},
	}
}
