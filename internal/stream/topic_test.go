package stream

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicPublishOrder(t *testing.T) {
	topic := NewTopic[int]("numbers")

	var got []string
	topic.Subscribe(func(v int) { got = append(got, "a") })
	topic.Subscribe(func(v int) { got = append(got, "b") })

	topic.Publish(1)
	topic.Publish(2)

	assert.Equal(t, []string{"a", "b", "a", "b"}, got)
	assert.Equal(t, 2, topic.Subscribers())
	assert.Equal(t, "numbers", topic.Name())
}

func TestTopicUnsubscribe(t *testing.T) {
	topic := NewTopic[int]("numbers")

	var a, b []int
	stopA := topic.Subscribe(func(v int) { a = append(a, v) })
	topic.Subscribe(func(v int) { b = append(b, v) })

	topic.Publish(1)
	stopA()
	stopA()
	topic.Publish(2)

	assert.Equal(t, []int{1}, a)
	assert.Equal(t, []int{1, 2}, b)
	assert.Equal(t, 1, topic.Subscribers())
}

func TestTopicUnsubscribeDuringPublish(t *testing.T) {
	topic := NewTopic[int]("numbers")

	var calls int
	var stop func()
	stop = topic.Subscribe(func(v int) {
		calls++
		stop()
	})

	topic.Publish(1)
	topic.Publish(2)
	assert.Equal(t, 1, calls)
}

func TestTopicNoSubscribers(t *testing.T) {
	topic := NewTopic[string]("empty")
	topic.Publish("ignored")
	assert.Zero(t, topic.Subscribers())

	var nilTopic *Topic[string]
	nilTopic.Publish("ignored")
	nilTopic.Subscribe(func(string) {})()
	assert.Zero(t, nilTopic.Subscribers())
}

func TestTopicConcurrentSubscribe(t *testing.T) {
	topic := NewTopic[int]("numbers")

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stop := topic.Subscribe(func(int) {})
			topic.Publish(1)
			stop()
		}()
	}
	wg.Wait()

	require.Zero(t, topic.Subscribers())
}
