package rabbitmq

// QueueConfig binds a queue to the notifications exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

const (
	// PremiumExpiringQueue receives users whose premium access ends tomorrow.
	PremiumExpiringQueue = "notifications.premium_expiring"
	// PremiumExpiringKey routes to PremiumExpiringQueue.
	PremiumExpiringKey = "premium_expiring"
)

// GetNotificationQueues returns the queues declared by publisher and consumer.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: PremiumExpiringQueue, RoutingKey: PremiumExpiringKey},
	}
}
