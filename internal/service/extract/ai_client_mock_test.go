package extract

import (
	"context"
	"sync"
)

var _ aiClient = &aiClientMock{}

type aiClientMock struct {
	ConfiguredFunc    func() bool
	TranscribeFunc    func(ctx context.Context, audio []byte) (string, error)
	ReadImageTextFunc func(ctx context.Context, image []byte, mimeType string, instruction string) (string, error)

	calls struct {
		Transcribe []struct {
			Audio []byte
		}
		ReadImageText []struct {
			Image       []byte
			MimeType    string
			Instruction string
		}
	}
	lockTranscribe    sync.RWMutex
	lockReadImageText sync.RWMutex
}

func (mock *aiClientMock) Configured() bool {
	if mock.ConfiguredFunc == nil {
		panic("aiClientMock.ConfiguredFunc: method is nil but aiClient.Configured was just called")
	}
	return mock.ConfiguredFunc()
}

func (mock *aiClientMock) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if mock.TranscribeFunc == nil {
		panic("aiClientMock.TranscribeFunc: method is nil but aiClient.Transcribe was just called")
	}
	callInfo := struct {
		Audio []byte
	}{Audio: audio}
	mock.lockTranscribe.Lock()
	mock.calls.Transcribe = append(mock.calls.Transcribe, callInfo)
	mock.lockTranscribe.Unlock()
	return mock.TranscribeFunc(ctx, audio)
}

func (mock *aiClientMock) TranscribeCalls() []struct {
	Audio []byte
} {
	mock.lockTranscribe.RLock()
	calls := mock.calls.Transcribe
	mock.lockTranscribe.RUnlock()
	return calls
}

func (mock *aiClientMock) ReadImageText(ctx context.Context, image []byte, mimeType string, instruction string) (string, error) {
	if mock.ReadImageTextFunc == nil {
		panic("aiClientMock.ReadImageTextFunc: method is nil but aiClient.ReadImageText was just called")
	}
	callInfo := struct {
		Image       []byte
		MimeType    string
		Instruction string
	}{Image: image, MimeType: mimeType, Instruction: instruction}
	mock.lockReadImageText.Lock()
	mock.calls.ReadImageText = append(mock.calls.ReadImageText, callInfo)
	mock.lockReadImageText.Unlock()
	return mock.ReadImageTextFunc(ctx, image, mimeType, instruction)
}

func (mock *aiClientMock) ReadImageTextCalls() []struct {
	Image       []byte
	MimeType    string
	Instruction string
} {
	mock.lockReadImageText.RLock()
	calls := mock.calls.ReadImageText
	mock.lockReadImageText.RUnlock()
	return calls
}

var _ blobReader = &blobReaderMock{}

type blobReaderMock struct {
	ReadFunc func(ctx context.Context, key string) ([]byte, error)

	calls struct {
		Read []struct {
			Key string
		}
	}
	lockRead sync.RWMutex
}

func (mock *blobReaderMock) Read(ctx context.Context, key string) ([]byte, error) {
	if mock.ReadFunc == nil {
		panic("blobReaderMock.ReadFunc: method is nil but blobReader.Read was just called")
	}
	mock.lockRead.Lock()
	mock.calls.Read = append(mock.calls.Read, struct{ Key string }{Key: key})
	mock.lockRead.Unlock()
	return mock.ReadFunc(ctx, key)
}

func (mock *blobReaderMock) ReadCalls() []struct {
	Key string
} {
	mock.lockRead.RLock()
	calls := mock.calls.Read
	mock.lockRead.RUnlock()
	return calls
}
