package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"

	"senseact/internal/config"
	"senseact/internal/dao"
	"senseact/pkg/log"
)

// Consumer pulls video segment references off NSQ and hands each one to the
// processor. AddConcurrentHandlers bounds the number of segments decoded in
// parallel.
type Consumer struct {
	conf      config.NSQConfig
	ctx       context.Context
	cancel    context.CancelFunc
	consumer  *nsq.Consumer
	wg        sync.WaitGroup
	logger    *logrus.Entry
	processor *Processor
}

func NewConsumer(conf config.NSQConfig, concurrency int, processor *Processor) (*Consumer, error) {
	ctx, cancel := context.WithCancel(context.Background())

	logger := log.WithComponent(ctx, "consumer")

	if concurrency <= 0 {
		concurrency = 1
	}

	nsqConf := nsq.NewConfig()
	// A segment decode plus per-keyframe analysis can run for minutes.
	nsqConf.MsgTimeout = 10 * time.Minute
	nsqConf.MaxInFlight = concurrency
	nsqConf.MaxAttempts = 2

	consumer, err := nsq.NewConsumer(conf.Topic, conf.Channel, nsqConf)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create NSQ consumer: %w", err)
	}

	c := &Consumer{
		conf:      conf,
		ctx:       ctx,
		cancel:    cancel,
		consumer:  consumer,
		logger:    logger,
		processor: processor,
	}

	consumer.AddConcurrentHandlers(c, concurrency)

	return c, nil
}

func (c *Consumer) HandleMessage(message *nsq.Message) error {
	c.logger.Debugf("Received NSQ message: %s", string(message.Body))
	message.DisableAutoResponse()

	var ref dao.VideoReference
	if err := json.Unmarshal(message.Body, &ref); err != nil {
		c.logger.WithError(err).Error("Failed to unmarshal segment reference")
		// Malformed payloads never become valid, do not requeue.
		message.Finish()
		return nil
	}

	c.logger.WithFields(logrus.Fields{
		"device":    ref.DeviceId,
		"timestamp": ref.Timestamp,
		"object":    ref.ObjectName,
	}).Info("Processing video segment")

	if err := c.processor.Process(c.ctx, &ref); err != nil {
		// A skipped segment is reported and abandoned; the next segment
		// from the same device carries the stream forward.
		c.logger.WithError(err).Errorf("Failed to process segment %s", ref.ObjectName)
	}

	message.Finish()
	return nil
}

func (c *Consumer) Start() error {
	c.logger.Info("Starting NSQ consumer...")

	err := c.consumer.ConnectToNSQDs(c.conf.NSQDAddrs)
	if err != nil {
		return fmt.Errorf("failed to connect to NSQs: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		c.consumer.Stop()
	}()

	return nil
}

func (c *Consumer) Stop() {
	c.cancel()
	c.wg.Wait()
}
