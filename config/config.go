package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	FlightBoard FlightBoardConfig `yaml:"flightboard"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                      string `yaml:"host"`
	Port                      int    `yaml:"port"`
	ScheduleRefreshedTopicName string `yaml:"schedule_refreshed_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type FlightBoardConfig struct {
	APIHTTPAddr    string `yaml:"api_http_addr"`
	WorkerHTTPAddr string `yaml:"worker_http_addr"`

	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`

	// Scrape target. BaseURL points at the flightstats v2 flight-tracker root.
	BaseURL     string `yaml:"base_url"`
	Airport     string `yaml:"airport"`
	AirportName string `yaml:"airport_name"`

	// TimeSlots are the hour-of-day values queried per date. Several slots per
	// day approximate full-day coverage of the schedule pages.
	TimeSlots   []int `yaml:"time_slots"`
	DaysToFetch int   `yaml:"days_to_fetch"`

	CacheTTLSeconds int  `yaml:"cache_ttl_seconds"`
	DedupeFlights   bool `yaml:"dedupe_flights"`

	RefreshIntervalSeconds    int `yaml:"refresh_interval_seconds"`
	ScrapeRateLimitPerMinute  int `yaml:"scrape_rate_limit_per_minute"`
	ScrapeConcurrency         int `yaml:"scrape_concurrency"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
