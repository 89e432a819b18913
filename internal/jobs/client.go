package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
)

// Client encola tareas.
type Client struct {
	client *asynq.Client
}

// NewClient construye el cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueForm26Q encola la generación del trimestre. Un mismo período no se duplica mientras
// la tarea anterior siga pendiente.
func (c *Client) EnqueueForm26Q(ctx context.Context, fy fiscal.FinancialYear, q fiscal.Quarter) (string, string, error) {
	task, err := NewForm26QTask(fy, q)
	if err != nil {
		return "", "", err
	}
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.TaskID("form26q:"+fy.String()+":"+q.String()),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return "", "", fmt.Errorf("%w: ya hay una generación pendiente de %s %s", domain.ErrConflict, fy, q)
	}
	if err != nil {
		return "", "", err
	}
	return info.ID, info.Queue, nil
}

// Close libera la conexión.
func (c *Client) Close() error {
	return c.client.Close()
}
