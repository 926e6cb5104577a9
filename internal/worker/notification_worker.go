package worker

import (
	"github.com/spec-kit/lostfound-service/internal/events"
	"github.com/spec-kit/lostfound-service/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a
// publisher is given, forwards every event to the message broker.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, publisher *events.AMQPPublisher) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if publisher != nil && dispatcher != nil {
		publisher.Register(dispatcher)
	}
}
