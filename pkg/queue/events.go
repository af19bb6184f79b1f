package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishFileStored 发布 dv.file.stored 事件。
// 用于内容写入对象存储并同步元数据到数据库后，通知下游流程（如缩略图、索引等）。
func PublishFileStored(pub message.Publisher, payload FileStoredPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileStored, payload, opts...)
}

// PublishFileDeleted 发布 dv.file.deleted 事件。
func PublishFileDeleted(pub message.Publisher, payload FileDeletedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileDeleted, payload, opts...)
}

// PublishFileRenamed 发布 dv.file.renamed 事件。
func PublishFileRenamed(pub message.Publisher, payload FileRenamedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileRenamed, payload, opts...)
}

// PublishFileMoved 发布 dv.file.moved 事件。
func PublishFileMoved(pub message.Publisher, payload FileMovedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileMoved, payload, opts...)
}

// PublishFileDownloaded 发布 dv.file.downloaded 事件。
func PublishFileDownloaded(pub message.Publisher, payload FileDownloadedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileDownloaded, payload, opts...)
}

// PublishFolderCreated 发布 dv.folder.created 事件。
func PublishFolderCreated(pub message.Publisher, payload FolderPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFolderCreated, payload, opts...)
}

// PublishFolderDeleted 发布 dv.folder.deleted 事件。
func PublishFolderDeleted(pub message.Publisher, payload FolderPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFolderDeleted, payload, opts...)
}

// PublishShareGranted 发布 dv.share.granted 事件。
func PublishShareGranted(pub message.Publisher, payload SharePayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicShareGranted, payload, opts...)
}

// PublishShareRevoked 发布 dv.share.revoked 事件。
func PublishShareRevoked(pub message.Publisher, payload SharePayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicShareRevoked, payload, opts...)
}

// PublishLinkCreated 发布 dv.link.created 事件。
func PublishLinkCreated(pub message.Publisher, payload LinkPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicLinkCreated, payload, opts...)
}

// PublishLinkAccessed 发布 dv.link.accessed 事件。
func PublishLinkAccessed(pub message.Publisher, payload LinkPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicLinkAccessed, payload, opts...)
}

// ParseFileStored 将 Watermill 消息解析为强类型 Envelope（FileStoredPayload）。
func ParseFileStored(msg *message.Message) (Message[FileStoredPayload], error) {
	return ParseWatermillMessage[FileStoredPayload](msg)
}

// ParseFileDeleted 将 Watermill 消息解析为强类型 Envelope（FileDeletedPayload）。
func ParseFileDeleted(msg *message.Message) (Message[FileDeletedPayload], error) {
	return ParseWatermillMessage[FileDeletedPayload](msg)
}

func publish[T any](pub message.Publisher, topic string, payload T, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}
