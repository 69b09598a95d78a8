package protocol

import "encoding/json"

// NewMessage 创建一个新消息
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	msg := &Message{Type: msgType}

	if payload != nil {
		var err error
		msg.Payload, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType MessageType, payload any) *Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// NewAck 创建命令应答消息
func NewAck(seq uint64, payload AckPayload) *Message {
	msg := MustNewMessage(MsgAck, payload)
	msg.Seq = seq
	return msg
}

// NewErrorAck 创建失败应答
func NewErrorAck(seq uint64, reason string) *Message {
	return NewAck(seq, AckPayload{Ok: false, Reason: reason})
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
