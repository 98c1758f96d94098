package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"
)

var devMode bool

// logError logs an error with context and dumps db table counts in dev mode
func logError(context string, err error) {
	log.Printf("ERROR [%s]: %v", context, err)
	if devMode && db != nil {
		var users, sessions, rooms int
		db.Get(&users, "SELECT COUNT(*) FROM user")
		db.Get(&sessions, "SELECT COUNT(*) FROM session")
		db.Get(&rooms, "SELECT COUNT(*) FROM game_room")
		log.Printf("DB state: %d users, %d sessions, %d rooms", users, sessions, rooms)
	}
}

// AppLogger provides extended diagnostics, off by default: optional
// per-concern log files for request traffic, websocket messages and
// room-state snapshots, plus gated debug lines.
type AppLogger struct {
	outputDir      string
	logRequests    bool
	logWS          bool
	logRooms       bool
	debug          bool
	requestLog     *os.File
	wsLog          *os.File
	roomLog        *os.File
	mu             sync.Mutex
	requestCount   int
	wsMessageCount int
}

// Global application logger (used by server)
var appLogger *AppLogger

// LogConfig holds logging configuration
type LogConfig struct {
	OutputDir   string
	LogRequests bool
	LogWS       bool
	LogRooms    bool
	Debug       bool
}

// NewAppLogger creates a new application logger
func NewAppLogger(config LogConfig) (*AppLogger, error) {
	al := &AppLogger{
		outputDir:   config.OutputDir,
		logRequests: config.LogRequests,
		logWS:       config.LogWS,
		logRooms:    config.LogRooms,
		debug:       config.Debug,
	}

	if al.outputDir == "" {
		return al, nil // No file logging, just in-memory state
	}

	var err error
	if al.logRequests {
		path := fmt.Sprintf("%s/requests.log", al.outputDir)
		al.requestLog, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open request log: %w", err)
		}
	}
	if al.logWS {
		path := fmt.Sprintf("%s/websocket.log", al.outputDir)
		al.wsLog, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open WebSocket log: %w", err)
		}
	}
	if al.logRooms {
		path := fmt.Sprintf("%s/rooms.log", al.outputDir)
		al.roomLog, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open room log: %w", err)
		}
	}

	return al, nil
}

// Close closes all open log files
func (al *AppLogger) Close() {
	if al == nil {
		return
	}
	al.mu.Lock()
	defer al.mu.Unlock()
	for _, f := range []*os.File{al.requestLog, al.wsLog, al.roomLog} {
		if f != nil {
			f.Close()
		}
	}
}

// IsEnabled reports whether any extended logging is active
func (al *AppLogger) IsEnabled() bool {
	if al == nil {
		return false
	}
	return al.logRequests || al.logWS || al.logRooms || al.debug
}

// LogRequest records one HTTP request line
func (al *AppLogger) LogRequest(method, url string, status int, elapsed time.Duration) {
	if al == nil || !al.logRequests {
		return
	}
	al.mu.Lock()
	defer al.mu.Unlock()
	al.requestCount++
	line := fmt.Sprintf("[%s] #%d %s %s -> %d (%s)\n",
		time.Now().Format(time.RFC3339), al.requestCount, method, url, status, elapsed)
	if al.requestLog != nil {
		al.requestLog.WriteString(line)
	} else {
		log.Print(line)
	}
}

// LogWebSocket records one websocket message, truncated
func (al *AppLogger) LogWebSocket(direction string, playerID int64, message string) {
	if al == nil || !al.logWS {
		return
	}
	al.mu.Lock()
	defer al.mu.Unlock()
	al.wsMessageCount++
	if len(message) > 500 {
		message = message[:500] + "..."
	}
	line := fmt.Sprintf("[%s] #%d %s player=%d %s\n",
		time.Now().Format(time.RFC3339), al.wsMessageCount, direction, playerID, message)
	if al.wsLog != nil {
		al.wsLog.WriteString(line)
	} else {
		log.Print(line)
	}
}

// LogRoom records a room-state snapshot marker
func (al *AppLogger) LogRoom(roomID, context string) {
	if al == nil || !al.logRooms {
		return
	}
	al.mu.Lock()
	defer al.mu.Unlock()
	line := fmt.Sprintf("[%s] room=%s %s\n", time.Now().Format(time.RFC3339), roomID, context)
	if al.roomLog != nil {
		al.roomLog.WriteString(line)
	} else {
		log.Print(line)
	}
}

// Debug writes a gated diagnostic line
func (al *AppLogger) Debug(format string, args ...any) {
	if al == nil || !al.debug {
		return
	}
	log.Printf("DEBUG: "+format, args...)
}

// Package-level helpers so call sites stay short.

func LogWSMessage(direction string, playerID int64, message string) {
	appLogger.LogWebSocket(direction, playerID, message)
}

func LogRoomState(roomID, context string) {
	appLogger.LogRoom(roomID, context)
}

func DebugLog(context string, format string, args ...any) {
	appLogger.Debug("["+context+"] "+format, args...)
}

func CloseAppLogger() {
	appLogger.Close()
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// LoggingHandler wraps an http.Handler and records each request.
// WebSocket upgrades are passed through without a recorder because
// they need http.Hijacker on the raw ResponseWriter.
type LoggingHandler struct {
	Handler http.Handler
	Logger  *AppLogger
}

func (l *LoggingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/ws" {
		l.Logger.LogRequest(r.Method, r.URL.String(), http.StatusSwitchingProtocols, 0)
		l.Handler.ServeHTTP(w, r)
		return
	}
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	l.Handler.ServeHTTP(rec, r)
	l.Logger.LogRequest(r.Method, r.URL.String(), rec.status, time.Since(start))
}
