package exercise

import "fmt"

func flashcardFeedback(quality int) string {
	switch quality {
	case 5:
		return "Tuyệt vời! Từ này sẽ được ôn lại sau một thời gian dài hơn."
	case 3:
		return "Khá tốt! Từ này sẽ được ôn lại sớm để ghi nhớ chắc hơn."
	default:
		return "Không sao cả! Từ này sẽ xuất hiện lại vào ngày mai."
	}
}

func correctFeedback(expected string) string {
	return fmt.Sprintf("Chính xác! Đáp án là \"%s\".", expected)
}

func incorrectFeedback(expected string) string {
	return fmt.Sprintf("Chưa đúng. Đáp án đúng là \"%s\".", expected)
}

func matchingFeedback(correct, total int) string {
	if correct == total {
		return fmt.Sprintf("Chính xác! Bạn đã nối đúng cả %d cặp.", total)
	}
	return fmt.Sprintf("Bạn đã nối đúng %d/%d cặp.", correct, total)
}

func freeTextFeedback(word string) string {
	return fmt.Sprintf("Câu trả lời chưa đạt yêu cầu với từ \"%s\". Hãy thử lại nhé.", word)
}
