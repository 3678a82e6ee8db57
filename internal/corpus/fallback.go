package corpus

import "dsa-rag/internal/models"

func fallbackDoc(source string, page int, topic, content string) models.Document {
	return models.Document{
		Content:  content,
		Metadata: models.Metadata{Source: source, Page: models.PageOf(page), Topic: topic},
	}
}

// Fallback returns the built-in corpus covering core data structure and
// algorithm topics. Each call returns a fresh slice.
func Fallback() []models.Document {
	return []models.Document{
		fallbackDoc("ds-notes", 1, "stack",
			"A stack is a linear data structure that follows the Last In First Out (LIFO) principle. Elements are added and removed from the same end, called the top of the stack. Common operations include push (add element), pop (remove element), and peek (view top element without removing). Stacks are used in function calls, expression evaluation, and undo operations. Push is the term used to insert an element into a stack. Pop is the term used to delete an element from the stack. All insertions and deletions take place at the same end, so the last element added to the stack will be the first element removed from the stack."),
		fallbackDoc("ds-notes", 2, "queue",
			"A queue is a linear data structure that follows the First In First Out (FIFO) principle. Elements are added at the rear (enqueue) and removed from the front (dequeue). It's like a line of people waiting - first person in line gets served first. Queues are used in breadth-first search, task scheduling, and buffering. To remove a new element inserted into the Queue, all elements inserted before it must first be removed. The peek() function is often used to return the value of the first element in the queue without deleting it."),
		fallbackDoc("ds-notes", 3, "array",
			"Arrays are data structures that store elements in contiguous memory locations. They provide constant time O(1) access to elements using indices. Arrays have fixed size in many programming languages. Random access is their main advantage, but insertion and deletion can be expensive O(n) operations. Array elements are stored in consecutive memory locations and can be accessed using array indices."),
		fallbackDoc("ds-notes", 4, "linked-list",
			"Linked lists are dynamic data structures where elements (nodes) are stored in sequence, but not necessarily in contiguous memory. Each node contains data and a pointer to the next node. Types include singly linked, doubly linked, and circular linked lists. They allow efficient insertion and deletion but require O(n) time for search. Unlike arrays, linked lists can grow or shrink during runtime."),
		fallbackDoc("ds-notes", 5, "binary-tree",
			"Binary trees are hierarchical data structures where each node has at most two children, referred to as left and right child. Tree traversal methods include inorder, preorder, and postorder. Binary search trees maintain a sorted order where left children are smaller and right children are larger than the parent. Trees are used in many applications including file systems, databases, and expression parsing."),
		fallbackDoc("ds-notes", 6, "hash-table",
			"Hash tables (hash maps) provide average O(1) time complexity for search, insertion, and deletion operations. They use a hash function to compute an index into an array of buckets. Collision resolution techniques include chaining and open addressing. Hash tables are widely used in database indexing and caching. The hash function distributes keys uniformly across the hash table."),
		fallbackDoc("algorithms", 1, "binary-search",
			"Binary search is an efficient algorithm for finding an item from a sorted list of items. It works by repeatedly dividing the search interval in half. Binary search compares the target value to the middle element of the array. If they are not equal, the half in which the target cannot lie is eliminated and the search continues on the remaining half. Time complexity is O(log n)."),
		fallbackDoc("algorithms", 2, "bubble-sort",
			"Bubble sort is a simple sorting algorithm that repeatedly steps through the list, compares adjacent elements and swaps them if they're in the wrong order. It has O(n²) time complexity in worst and average cases. Despite being inefficient for large datasets, it's educational and has O(1) space complexity. The algorithm gets its name because smaller elements bubble to the top of the list."),
		fallbackDoc("algorithms", 3, "quick-sort",
			"Quick sort is an efficient divide-and-conquer sorting algorithm. It picks a pivot element and partitions the array around it, then recursively sorts the sub-arrays. Average time complexity is O(n log n), but worst case is O(n²). It's widely used due to its practical efficiency and in-place sorting capability. The choice of pivot selection strategy affects performance."),
		fallbackDoc("algorithms", 4, "merge-sort",
			"Merge sort is a stable, divide-and-conquer sorting algorithm. It divides the input array into two halves, recursively sorts them, and then merges the sorted halves. Time complexity is consistently O(n log n) for all cases. Space complexity is O(n) due to the temporary arrays used in merging. Merge sort is preferred when stable sorting is required."),
	}
}
