package mailer

import "context"

// Publisher puts a JSON document on a queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueSender hands messages to the email worker instead of sending them
// inline. Send succeeds once the broker has accepted the job.
type QueueSender struct {
	pub Publisher
}

func NewQueueSender(pub Publisher) *QueueSender {
	return &QueueSender{pub: pub}
}

func (q *QueueSender) Send(ctx context.Context, m Message) error {
	return q.pub.PublishJSON(ctx, JobFrom(m))
}
