// Package xwaitset 提供通用的条件多路复用同步原语（wait-set）。
//
// WaitSet 维护一张固定容量的触发器（Trigger）表：任意独立所有权的源对象
// （origin）可以把"某件事是否已发生"的布尔谓词注册进来，消费者线程通过
// Wait 阻塞等待，直到任一谓词为真，然后拿到一批按注册顺序排列的
// [TriggerState] 逐个分发处理。
//
// 支持以下特性：
//   - 固定容量（[1, 65536]），注册满时 Attach 返回 ErrCapacityExceeded 而非扩容
//   - 电平触发（level-triggered）：每次 Wait 独立重扫所有有效谓词，
//     不依赖事件投递，虚假唤醒天然无害
//   - 不透明 Handle（index+generation token）：Detach/Signal 对过期
//     Handle 是安全的空操作
//   - 生产者侧 Signal 非阻塞：只翻转闩锁并唤醒等待者，不求值、不分发
//   - 多等待者：Signal 通过 close-channel 广播唤醒所有阻塞中的 Wait
//   - TimedWait 限时变体，超时返回 ErrTimeout（与空结果严格区分）
//   - Close 释放所有仍有效的槽位（逐个调用 detach hook）并唤醒所有等待者
//   - 可注入 xlog.Logger、OTel MeterProvider/TracerProvider
//
// # 注意事项
//
//   - WaitSet 只持有 origin 的非拥有引用，origin 必须在注销（Detach）之后
//     才能销毁；Attach 方负责在 origin 生命周期结束前 Detach
//   - 谓词、detach hook、分发回调必须是非阻塞的全函数，且不得回调进
//     WaitSet 本身（会死锁）
//   - 闩锁（[Latch]）由 origin 所有，Signal 置真，只有消费者在分发后负责
//     Reset；忘记 Reset 会导致同一条件出现在之后每次 Wait 的结果里
//   - Wait 在正常运行中绝不返回空结果集：空结果只伴随 ctx 取消、超时
//     或 Close 的错误出现
//   - Attach 不会求值谓词，也不会唤醒已阻塞的等待者；已满足的谓词
//     在下一次 Wait 调用或下一次唤醒重扫时可见
//
// # 设计选择说明
//
// 设计决策: Handle 采用 index+generation 值令牌而非回指 origin 的双向引用。
// origin 只需保存令牌并在自身 teardown 时调用 Detach(token)，消除了
// 注销钩子反向侵入 origin 内部的环形引用。
//
// 设计决策: 分发回调在 Attach 处以闭包绑定具体 origin 类型，消费者无需
// 向下转型；需要取回 origin 时使用 [OriginAs] 做受检断言。
//
// 设计决策: 结果按槽位（注册）顺序返回，稳定、确定，但不含优先级语义；
// 谓词模型本身不蕴含优先级，需要优先级的调用方应自行分组多个 WaitSet。
package xwaitset
