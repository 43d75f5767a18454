package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"spamguard/pkg/api"
	"spamguard/pkg/match"
	"spamguard/pkg/rewrite"
	"spamguard/pkg/synonym"
	"spamguard/pkg/wordlist"
)

type Config struct {
	ServiceName  string `toml:"serviceName"`
	WordListPath string `toml:"wordListPath"`

	HTTPAddr string `toml:"httpAddr"`
	LogLevel string `toml:"logLevel"`

	SynonymURL        string `toml:"synonymURL"`
	SynonymMax        int    `toml:"synonymMax"`
	SynonymTimeout    string `toml:"synonymTimeout"`
	LookupConcurrency int    `toml:"lookupConcurrency"`

	KafkaAddr  string `toml:"kafkaAddr"`
	KafkaTopic string `toml:"kafkaTopic"`
	KafkaBatch int    `toml:"kafkaBatch"`
}

func defaultConfig() Config {
	return Config{
		ServiceName:  "spamguard",
		WordListPath: "cmd/server/spam_words.csv",
		HTTPAddr:     ":5001",
		LogLevel:     "info",
		SynonymURL:   synonym.DefaultURL,
		SynonymMax:   synonym.DefaultMaxCandidates,
	}
}

func main() {
	var (
		configPath   string
		wordListPath string
		httpAddr     string
		logLevel     string
		synonymURL   string
		kafkaAddr    string
		kafkaTopic   string
		kafkaBatch   int
	)

	flag.StringVar(&configPath, "servconf", "cmd/server/config.toml", "Path to TOML config file")
	flag.StringVar(&wordListPath, "words", "", "Path to spam word list (.csv or .json)")
	flag.StringVar(&httpAddr, "http", "", "HTTP server address in the form 'host:port'.")
	flag.StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error.")
	flag.StringVar(&synonymURL, "synonyms", "", "Synonym service URL.")
	flag.StringVar(&kafkaAddr, "kafka", "", "Kafka server address in the form 'host:port'.")
	flag.StringVar(&kafkaTopic, "topic", "", "Kafka topic.")
	flag.IntVar(&kafkaBatch, "batch", 0, "Kafka batch size.")
	flag.Parse()

	cfg := defaultConfig()
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("[server] failed to load config file %s: %v", configPath, err)
		}
		log.Warnf("[server] config file %s not found, using defaults", configPath)
	}

	// Override config with flags if set
	if wordListPath != "" {
		cfg.WordListPath = wordListPath
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if synonymURL != "" {
		cfg.SynonymURL = synonymURL
	}
	if kafkaAddr != "" {
		cfg.KafkaAddr = kafkaAddr
	}
	if kafkaTopic != "" {
		cfg.KafkaTopic = kafkaTopic
	}
	if kafkaBatch != 0 {
		cfg.KafkaBatch = kafkaBatch
	}

	if !strings.Contains(cfg.HTTPAddr, ":") {
		log.Warn("[server] use ':' before port number, e.g. ':8080'")
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	}

	var timeout time.Duration
	if cfg.SynonymTimeout != "" {
		d, err := time.ParseDuration(cfg.SynonymTimeout)
		if err != nil {
			log.Fatalf("[server] invalid synonymTimeout %q: %v", cfg.SynonymTimeout, err)
		}
		timeout = d
	}

	words, err := wordlist.Load(cfg.WordListPath)
	if err != nil {
		log.Fatalf("[server] failed to load word list %s: %v", cfg.WordListPath, err)
	}
	log.Infof("[server] loaded %d spam words from %s", words.Len(), cfg.WordListPath)

	resolver := synonym.New(
		synonym.NewDatamuse(cfg.SynonymURL, timeout),
		words,
		synonym.Config{MaxCandidates: cfg.SynonymMax, Concurrency: cfg.LookupConcurrency},
	)
	rw := rewrite.New(match.New(words.Terms()), resolver)

	var kafkaWriter *kafka.Writer
	if cfg.KafkaAddr != "" && cfg.KafkaTopic != "" {
		kafkaWriter = &kafka.Writer{
			Addr:      kafka.TCP(cfg.KafkaAddr),
			Topic:     cfg.KafkaTopic,
			BatchSize: cfg.KafkaBatch,
		}
		err := createTopic(kafkaWriter.Addr.String(), kafkaWriter.Topic)
		if err != nil {
			log.Warnf("[server] failed to create Kafka topic: %v", err)
		}
	} else {
		log.Warnf("[server] kafka was not configured, logs will not be sent to Kafka")
	}

	api, err := api.New(cfg.ServiceName, rw, kafkaWriter)
	if err != nil {
		log.Fatalf("[server] failed to create API: %v", err)
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Infof("[server] starting on %v", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] failed to start: %v", err)
			return
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}

	if kafkaWriter != nil {
		api.WaitLogs()
		if err := kafkaWriter.Close(); err != nil {
			log.Errorf("[server] failed to flush Kafka writer: %v", err)
		}
	}
}

func createTopic(broker, topic string) error {
	conn, err := kafka.DialContext(context.Background(), "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
}
