// Package metrics publishes portal counters to CloudWatch.
// file: metrics/metrics.go
package metrics

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"

	"athmageeth-portal/logger"
)

// Submission outcomes reported by RegistrationSubmitted.
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

// Recorder receives portal events worth counting.
type Recorder interface {
	RegistrationSubmitted(outcome string)
	RegistrationDeleted()
	AdminLogin(success bool)
}

// Nop discards every event.
type Nop struct{}

func (Nop) RegistrationSubmitted(string) {}
func (Nop) RegistrationDeleted()         {}
func (Nop) AdminLogin(bool)              {}

// CloudWatch publishes each event as a single Count datum.
type CloudWatch struct {
	client    cloudwatchiface.CloudWatchAPI
	namespace string
	// publish runs put; tests swap it for a synchronous call.
	publish func(func())
}

// NewCloudWatch wraps a CloudWatch client. Data is sent in the background so
// request handlers never wait on the metrics API.
func NewCloudWatch(client cloudwatchiface.CloudWatchAPI, namespace string) *CloudWatch {
	return &CloudWatch{
		client:    client,
		namespace: namespace,
		publish:   func(f func()) { go f() },
	}
}

// RegistrationSubmitted counts one submission with its outcome.
func (c *CloudWatch) RegistrationSubmitted(outcome string) {
	c.publish(func() { c.put("RegistrationSubmitted", "Outcome", outcome) })
}

// RegistrationDeleted counts one admin delete.
func (c *CloudWatch) RegistrationDeleted() {
	c.publish(func() { c.put("RegistrationDeleted", "", "") })
}

// AdminLogin counts one login attempt.
func (c *CloudWatch) AdminLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.publish(func() { c.put("AdminLogin", "Outcome", outcome) })
}

// -----------------------------------------------------------
// internal helper to package up CloudWatch calls
// -----------------------------------------------------------
func (c *CloudWatch) put(metricName, dimension, value string) {
	datum := &cloudwatch.MetricDatum{
		MetricName: aws.String(metricName),
		Timestamp:  aws.Time(time.Now()),
		Value:      aws.Float64(1),
		Unit:       aws.String(cloudwatch.StandardUnitCount),
	}
	if dimension != "" {
		datum.Dimensions = []*cloudwatch.Dimension{
			{Name: aws.String(dimension), Value: aws.String(value)},
		}
	}

	_, err := c.client.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(c.namespace),
		MetricData: []*cloudwatch.MetricDatum{datum},
	})
	if err != nil {
		logger.Error.Printf("[CloudWatch.put] metric %s failed: %v", metricName, err)
	}
}
