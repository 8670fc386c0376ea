package kafka

import "fmt"

// TopicPrefix is the standard prefix for all storefront Kafka topics.
const TopicPrefix = "stride"

// Topic constructs a fully-qualified topic name such as stride.cart.count_changed.
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
