package intake

import (
	"fmt"

	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
)

const (
	msgHello        = "您好，我是 OCA 助理，我會逐一詢問您每項資料，請您確實填寫，謝謝。"
	msgAskName      = "請輸入填表人姓名："
	msgAskGender    = "性別請選：1. 男　2. 女　3. 其他（直接輸入 1/2/3）"
	msgAskAge       = "年齡（必填，需 ≥14）：請輸入數字（例如 16）"
	msgAskDate      = "日期：輸入 1 代表今天；或輸入 YYYY/MM/DD（例如 2025/09/02）"
	msgAskFlagA     = "躁狂（B 情緒）：1. 有　2. 無（直接輸入 1/2）"
	msgAskFlagB     = "躁狂（E 點）：1. 有　2. 無（直接輸入 1/2）"
	msgAskWant      = "想看的內容（可複選，例如 1,3；或選「全部」）：\n1. A~J 單點\n2. 綜合分析 + 痛點\n3. 人物側寫\n4. 全部"
	msgCancelled    = "已取消這次填寫。要再開始，請輸入「填表」。"
	msgCancelHint   = "輸入「取消」可中止，或輸入「重新開始」隨時重來。"
	msgRestarted    = "已重新開始，從頭來一次。"
	msgResetHint    = "對話狀態異常，已為您重置。請輸入「填表」重新開始。"
	msgContinueHint = "我們正在進行中喔～我再幫你接續目前這一題。"

	hintName   = "姓名不可空白，且最多 40 個字。"
	hintGender = "請輸入 1、2 或 3。"
	hintAge    = "年齡需為 14～120 的整數。"
	hintDate   = "日期格式不正確，請輸入 1 或 YYYY/MM/DD。"
	hintFlag   = "請輸入 1（有）或 2（無）。"
	hintScore  = "分數需介於 -100 ~ 100，請重新輸入（或點下方快捷）。"
	hintWant   = "請輸入 1、2、3 的組合，或 4 代表全部。"
)

const (
	optCancel  = "取消"
	optRestart = "重新開始"
	optStart   = "填表"
)

func askScore(dim assessment.DimensionKey) string {
	return fmt.Sprintf("請輸入 %s 點（%s，-100～100）的分數：", dim, dim.Name())
}
