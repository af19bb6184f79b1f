// Package queue 定义消息主题常量与分组，供发布/订阅使用.
package queue

// 主题命名规范：dv.<域>.<动作>，尽量稳定且向后兼容.
// 域：file(文件)、folder(文件夹)、share(定向分享)、link(公开链接)
// 动作：stored/deleted/renamed/moved/downloaded、created、granted/revoked、accessed

const (
	// 文件领域.
	TopicFileStored     = "dv.file.stored"     // 内容写入对象存储且元数据落库
	TopicFileDeleted    = "dv.file.deleted"    // 文件（含全部版本）被删除
	TopicFileRenamed    = "dv.file.renamed"    // 文件重命名
	TopicFileMoved      = "dv.file.moved"      // 文件移动到其他文件夹
	TopicFileDownloaded = "dv.file.downloaded" // 文件被下载

	// 文件夹领域.
	TopicFolderCreated = "dv.folder.created" // 新建文件夹
	TopicFolderDeleted = "dv.folder.deleted" // 删除空文件夹

	// 定向分享领域.
	TopicShareGranted = "dv.share.granted" // 分享授予或权限更新
	TopicShareRevoked = "dv.share.revoked" // 分享撤销

	// 公开链接领域.
	TopicLinkCreated  = "dv.link.created"  // 公开链接创建或轮换
	TopicLinkAccessed = "dv.link.accessed" // 公开链接被匿名访问
)

// 主题分组，用于批量订阅或权限控制.
var (
	// 文件相关主题集合.
	FileTopics = []string{
		TopicFileStored, TopicFileDeleted, TopicFileRenamed,
		TopicFileMoved, TopicFileDownloaded,
	}

	// 文件夹相关主题集合.
	FolderTopics = []string{
		TopicFolderCreated, TopicFolderDeleted,
	}

	// 分享与链接相关主题集合.
	ShareTopics = []string{
		TopicShareGranted, TopicShareRevoked,
		TopicLinkCreated, TopicLinkAccessed,
	}
)
