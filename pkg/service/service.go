package service

import (
	"os"
	"os/signal"
	"syscall"
)

// Service is the lifecycle contract for a long-running process.
type Service interface {
	Init() error
	Start() error
	Stop() error
}

// Run drives a Service: init, start, block until SIGINT/SIGTERM, stop.
func Run(s Service) error {
	if err := s.Init(); err != nil {
		return err
	}

	if err := s.Start(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return s.Stop()
}
