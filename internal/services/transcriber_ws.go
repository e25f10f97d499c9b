package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zevarhq/zevar/internal/models"
)

// WSTranscriber streams audio to a websocket ASR service using a small
// binary framing protocol: a JSON configuration frame first, then raw PCM
// chunks, then a normal close once all audio is on the wire.
type WSTranscriber struct {
	endpoint         string
	apiKey           string
	primaryLanguages map[string]bool
	logger           *zap.Logger
}

const (
	wsProtocolVersion = 0x1
	wsHeaderSize      = 0x1

	wsMsgConfig   = 0x1
	wsMsgAudio    = 0x2
	wsMsgResponse = 0x9
	wsMsgError    = 0xF

	wsFlagNoSequence  = 0x0
	wsFlagPosSequence = 0x1

	wsSerializationNone = 0x0
	wsSerializationJSON = 0x1

	wsCompressionNone = 0x0
	wsCompressionGzip = 0x1

	// 0.2 s of 16 kHz 16-bit mono audio per chunk.
	wsAudioChunkSize = 3200
)

// NewWSTranscriber creates a streaming transcriber. The endpoint is the
// wss:// ASR URL; primaryLanguages works the same as for the HTTP variant.
func NewWSTranscriber(endpoint, apiKey, primaryLanguages string, logger *zap.Logger) Transcriber {
	if primaryLanguages == "" {
		primaryLanguages = "en,hi"
	}
	primary := make(map[string]bool)
	for _, lang := range strings.Split(primaryLanguages, ",") {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang != "" {
			primary[lang] = true
		}
	}
	return &WSTranscriber{
		endpoint:         endpoint,
		apiKey:           apiKey,
		primaryLanguages: primary,
		logger:           logger,
	}
}

type wsASRConfig struct {
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	Audio struct {
		Format     string `json:"format"`
		SampleRate int    `json:"sample_rate"`
		Bits       int    `json:"bits"`
		Channel    int    `json:"channel"`
		Codec      string `json:"codec"`
	} `json:"audio"`
	Request struct {
		ModelName  string `json:"model_name"`
		EnablePunc bool   `json:"enable_punc"`
	} `json:"request"`
}

type wsASRResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  struct {
		Text       string  `json:"text"`
		Language   string  `json:"language"`
		Confidence float64 `json:"confidence"`
	} `json:"result"`
}

func (t *WSTranscriber) Transcribe(ctx context.Context, audio []byte, format string) (*models.Transcription, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("audio data is empty")
	}

	// WAV carries PCM after a 44-byte header; the service wants raw samples.
	pcm := audio
	if len(audio) > 44 && string(audio[0:4]) == "RIFF" {
		pcm = audio[44:]
	}

	header := http.Header{}
	if t.apiKey != "" {
		header.Add("Authorization", "Bearer "+t.apiKey)
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, t.endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ASR service: %w", err)
	}
	defer conn.Close()

	var config wsASRConfig
	config.User.UID = uuid.NewString()
	config.Audio.Format = "pcm"
	config.Audio.SampleRate = 16000
	config.Audio.Bits = 16
	config.Audio.Channel = 1
	config.Audio.Codec = "raw"
	config.Request.ModelName = "asr"
	config.Request.EnablePunc = true

	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	configFrame := buildASRFrame(wsMsgConfig, wsFlagNoSequence, wsSerializationJSON, 0, configJSON)
	if err := conn.WriteMessage(websocket.BinaryMessage, configFrame); err != nil {
		return nil, fmt.Errorf("failed to send config frame: %w", err)
	}

	_, ack, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to read config ack: %w", err)
	}
	msgType, _, payload, err := parseASRFrame(ack)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config ack: %w", err)
	}
	if msgType == wsMsgError {
		return nil, fmt.Errorf("ASR config rejected: %s", string(payload))
	}

	resultChan := make(chan *wsASRResponse, 1)
	errChan := make(chan error, 1)
	go t.readResults(conn, resultChan, errChan)

	// Sequences 0 and 1 are taken by the handshake.
	sequence := int32(2)
	for offset := 0; offset < len(pcm); offset += wsAudioChunkSize {
		end := offset + wsAudioChunkSize
		if end > len(pcm) {
			end = len(pcm)
		}
		frame := buildASRFrame(wsMsgAudio, wsFlagPosSequence, wsSerializationNone, sequence, pcm[offset:end])
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return nil, fmt.Errorf("failed to send audio frame: %w", err)
		}
		sequence++
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	select {
	case out := <-resultChan:
		if out == nil || out.Result.Text == "" {
			return nil, fmt.Errorf("no recognition result received")
		}
		lang := strings.ToLower(strings.TrimSpace(out.Result.Language))
		return &models.Transcription{
			Text:             strings.TrimSpace(out.Result.Text),
			DetectedLanguage: lang,
			Confidence:       out.Result.Confidence,
			NeedsTranslation: lang != "" && !t.primaryLanguages[lang],
		}, nil
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(30 * time.Second):
		return nil, fmt.Errorf("timeout waiting for ASR result")
	}
}

// readResults drains response frames until the server closes, keeping the
// last non-empty recognition.
func (t *WSTranscriber) readResults(conn *websocket.Conn, resultChan chan<- *wsASRResponse, errChan chan<- error) {
	var last *wsASRResponse
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				resultChan <- last
				return
			}
			errChan <- fmt.Errorf("failed to read ASR message: %w", err)
			return
		}
		msgType, _, payload, err := parseASRFrame(message)
		if err != nil {
			t.logger.Warn("skipping unparseable ASR frame", zap.Error(err))
			continue
		}
		if msgType == wsMsgError {
			errChan <- fmt.Errorf("ASR error: %s", string(payload))
			return
		}
		if msgType != wsMsgResponse || len(payload) == 0 {
			continue
		}
		var resp wsASRResponse
		if err := json.Unmarshal(payload, &resp); err != nil {
			continue
		}
		if resp.Code != 0 && resp.Message != "" {
			errChan <- fmt.Errorf("ASR error %d: %s", resp.Code, resp.Message)
			return
		}
		if resp.Result.Text != "" {
			last = &resp
		}
	}
}

// buildASRFrame lays out a 4-byte header, an optional sequence, the payload
// size, and the payload itself, all big-endian.
func buildASRFrame(msgType, flags, serialization byte, sequence int32, payload []byte) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte((wsProtocolVersion << 4) | wsHeaderSize)
	buf.WriteByte((msgType << 4) | flags)
	buf.WriteByte((serialization << 4) | wsCompressionNone)
	buf.WriteByte(0x0)
	if flags == wsFlagPosSequence {
		binary.Write(buf, binary.BigEndian, sequence)
	}
	binary.Write(buf, binary.BigEndian, int32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

func parseASRFrame(frame []byte) (msgType byte, sequence int32, payload []byte, err error) {
	if len(frame) < 12 {
		return 0, 0, nil, fmt.Errorf("frame too short: %d bytes", len(frame))
	}
	msgType = (frame[1] >> 4) & 0x0F
	compression := frame[2] & 0x0F

	buf := bytes.NewReader(frame[4:])
	binary.Read(buf, binary.BigEndian, &sequence)
	var payloadSize int32
	binary.Read(buf, binary.BigEndian, &payloadSize)
	payload = frame[12:]

	if compression == wsCompressionGzip {
		reader, gerr := gzip.NewReader(bytes.NewReader(payload))
		if gerr != nil {
			return 0, 0, nil, fmt.Errorf("failed to decompress payload: %w", gerr)
		}
		defer reader.Close()
		var out bytes.Buffer
		if _, gerr := out.ReadFrom(reader); gerr != nil {
			return 0, 0, nil, fmt.Errorf("failed to decompress payload: %w", gerr)
		}
		payload = out.Bytes()
	}
	return msgType, sequence, payload, nil
}
